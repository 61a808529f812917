package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Demographics struct {
	AgeStart int    `json:"age_start"`
	AgeEnd   int    `json:"age_end"`
	Gender   string `json:"gender"`
}

// Project is a creator's script or production. Deleting it removes its slots.
type Project struct {
	ID               uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID        uuid.UUID                        `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title            string                           `gorm:"not null;size:255" json:"title"`
	Genre            string                           `gorm:"size:50" json:"genre,omitempty"`
	BudgetTarget     float64                          `gorm:"not null;default:0" json:"budget_target"`
	ProductionWindow string                           `gorm:"size:255" json:"production_window"`
	Demographics     datatypes.JSONType[Demographics] `json:"demographics"`
	DocLink          string                           `gorm:"size:1024" json:"doc_link,omitempty"`
	CreatedAt        time.Time                        `gorm:"<-:create" json:"created_date"`
	UpdatedAt        time.Time                        `json:"last_modified_date"`
}
