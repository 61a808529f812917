package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a creator, advertiser or merchant and signs them in.
// Operator accounts are provisioned with the operator tool.
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if models.Role(req.Role) == models.RoleOperator {
		return nil, fmt.Errorf("%w: operator accounts cannot self-register", ErrForbidden)
	}

	user, err := s.createUser(ctx, req.Email, req.Name, req.Password, models.Role(req.Role))
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateOperator provisions an operator account.
func (s *AuthService) CreateOperator(ctx context.Context, email, name, password string) (*models.User, error) {
	req := &dto.SignupRequest{Email: email, Name: name, Password: password, Role: string(models.RoleOperator)}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.createUser(ctx, email, name, password, models.RoleOperator)
}

func (s *AuthService) createUser(ctx context.Context, email, name, password string, role models.Role) (*models.User, error) {
	email = normalizeEmail(email)

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("lookup user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:              uuid.New(),
		Email:           email,
		Name:            strings.TrimSpace(name),
		Password:        string(hash),
		Role:            role,
		MerchantProfile: datatypes.JSONMap{},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storageErr("create user", err)
	}

	slog.Info("user registered", "user_id", user.ID.String(), "role", string(role))
	return &user, nil
}

// Login succeeds only when the password verifies against the stored hash.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(&user)
}

// ResetPassword replaces the credential of the operator account with email.
// Other roles are not found.
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND role = ?", normalizeEmail(email), models.RoleOperator).
		Update("password", string(hash))
	if result.Error != nil {
		return storageErr("reset password", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("operator")
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// Resolve loads the user a verified token speaks for.
func (s *AuthService) Resolve(ctx context.Context, identity *Identity) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageErr("resolve user", err)
	}
	return &user, nil
}

// UpdateMe applies a self-service profile update. Merchant fields merge into
// merchant_profile without touching other keys.
func (s *AuthService) UpdateMe(ctx context.Context, actor *models.User, req *dto.UpdateMeRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}

	if actor.Role == models.RoleMerchant {
		profile := datatypes.JSONMap{}
		for k, v := range actor.MerchantProfile {
			profile[k] = v
		}
		changed := false
		if req.MinIntegrationFee != nil {
			profile[models.ProfileMinIntegrationFee] = *req.MinIntegrationFee
			changed = true
		}
		if req.EligibilityRules != nil {
			profile[models.ProfileEligibilityRules] = *req.EligibilityRules
			changed = true
		}
		if req.SuitabilityRules != nil {
			profile[models.ProfileSuitabilityRules] = *req.SuitabilityRules
			changed = true
		}
		if changed {
			updates["merchant_profile"] = profile
		}
	}

	if len(updates) == 0 {
		return actor, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", actor.ID).Updates(updates).Error; err != nil {
		return nil, storageErr("update user", err)
	}
	return s.GetUser(ctx, actor.ID.String())
}

func (s *AuthService) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := access.Authorize(actor, access.UserList, access.Facts{}); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func (s *AuthService) GetUser(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "user")
	}
	return &user, nil
}
