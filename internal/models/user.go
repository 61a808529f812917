package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleCreator    Role = "creator"
	RoleAdvertiser Role = "advertiser"
	RoleMerchant   Role = "merchant"
	RoleOperator   Role = "operator"
)

// IsBuyer reports whether the role may place bids on slots.
func (r Role) IsBuyer() bool {
	return r == RoleAdvertiser || r == RoleMerchant
}

// Merchant profile keys merged by self-service profile updates.
const (
	ProfileMinIntegrationFee = "min_integration_fee"
	ProfileEligibilityRules  = "eligibility_rules"
	ProfileSuitabilityRules  = "suitability_rules"
)

type User struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string            `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name            string            `gorm:"size:255" json:"name"`
	Password        string            `gorm:"not null" json:"-"`
	Role            Role              `gorm:"size:20;not null;index" json:"role"`
	MerchantProfile datatypes.JSONMap `json:"merchant_profile,omitempty"`
	CreatedAt       time.Time         `json:"created_date"`
	UpdatedAt       time.Time         `json:"last_modified_date"`
}
