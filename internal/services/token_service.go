package services

import (
	"fmt"
	"time"

	"github.com/backdrop/placement-market/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues HS256 bearer tokens carrying the subject email and role.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (s *TokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	Email string
	Role  models.Role
}

// IdentityFromToken extracts the identity from a token already verified by
// the JWT middleware.
func IdentityFromToken(token *jwt.Token) (*Identity, error) {
	if token == nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return nil, ErrUnauthenticated
	}
	role, _ := claims["role"].(string)
	return &Identity{Email: email, Role: models.Role(role)}, nil
}
