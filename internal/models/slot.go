package models

import (
	"time"

	"github.com/google/uuid"
)

type SlotModality string

const (
	ModalityPrivateAuction SlotModality = "Private Auction"
	ModalityPGReservation  SlotModality = "PG/Reservation"
)

// SlotStatus is set manually by the owning creator; bid events never change it.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "Available"
	SlotLocked    SlotStatus = "Locked"
	SlotCompleted SlotStatus = "Completed"
)

type SlotVisibility string

const (
	VisibilityPublic  SlotVisibility = "Public"
	VisibilityPrivate SlotVisibility = "Private"
)

// Slot is a sellable placement inside a project. CreatorID mirrors the
// project's creator so ownership checks need no join.
type Slot struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	CreatorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	SceneRef     string         `gorm:"size:255" json:"scene_ref"`
	Description  string         `gorm:"type:text" json:"description"`
	Constraints  string         `gorm:"type:text" json:"constraints,omitempty"`
	PricingFloor float64        `gorm:"not null;default:0" json:"pricing_floor"`
	Modality     SlotModality   `gorm:"size:50;not null" json:"modality"`
	Status       SlotStatus     `gorm:"size:20;not null" json:"status"`
	Visibility   SlotVisibility `gorm:"size:20;not null" json:"visibility"`
	CreatedAt    time.Time      `gorm:"<-:create" json:"created_date"`
	UpdatedAt    time.Time      `json:"last_modified_date"`
}
