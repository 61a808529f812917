package dto

import "github.com/backdrop/placement-market/internal/models"

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=creator advertiser merchant operator"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateMeRequest carries self-service profile changes. The merchant fields
// are merged into merchant_profile and ignored for other roles.
type UpdateMeRequest struct {
	Name              *string  `json:"name" validate:"omitempty,min=1,max=255"`
	MinIntegrationFee *float64 `json:"min_integration_fee" validate:"omitempty,gte=0"`
	EligibilityRules  *string  `json:"eligibility_rules"`
	SuitabilityRules  *string  `json:"suitability_rules"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}
