package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SKU struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Title      string                      `gorm:"not null;size:255" json:"title"`
	Price      float64                     `gorm:"not null;default:0" json:"price"`
	Margin     float64                     `gorm:"not null;default:0" json:"margin"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	ImageURL   string                      `gorm:"size:1024" json:"image_url,omitempty"`
	CreatedAt  time.Time                   `gorm:"<-:create" json:"created_date"`
	UpdatedAt  time.Time                   `json:"last_modified_date"`
}

func (SKU) TableName() string { return "skus" }
