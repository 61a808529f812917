package dto

import (
	"time"

	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
)

type CreateBidRequest struct {
	SlotID       string              `json:"slot_id" validate:"required"`
	Objective    models.BidObjective `json:"objective" validate:"required,oneof=Reach Conversions"`
	PricingModel models.PricingModel `json:"pricing_model" validate:"required,oneof=Fixed Rev-Share Hybrid"`
	AmountTerms  string              `json:"amount_terms" validate:"max=2000"`
	Amount       *float64            `json:"amount" validate:"omitempty,gte=0"`
	FlightWindow string              `json:"flight_window" validate:"max=255"`
}

// UpdateBidRequest edits a pending bid. Omitted fields keep their value.
type UpdateBidRequest struct {
	Objective    *models.BidObjective `json:"objective" validate:"omitempty,oneof=Reach Conversions"`
	PricingModel *models.PricingModel `json:"pricing_model" validate:"omitempty,oneof=Fixed Rev-Share Hybrid"`
	AmountTerms  *string              `json:"amount_terms" validate:"omitempty,max=2000"`
	Amount       *float64             `json:"amount" validate:"omitempty,gte=0"`
	FlightWindow *string              `json:"flight_window" validate:"omitempty,max=255"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type DealMemoResponse struct {
	DealID       uuid.UUID `json:"deal_id"`
	Content      string    `json:"content"`
	DownloadLink string    `json:"download_link"`
}

// EvidencePack joins a bid with its slot and project for audit.
type EvidencePack struct {
	DealID       uuid.UUID        `json:"deal_id"`
	Status       models.BidStatus `json:"status"`
	Bid          *models.Bid      `json:"bid"`
	Slot         *models.Slot     `json:"slot"`
	Project      *models.Project  `json:"project"`
	DealMemoLink string           `json:"deal_memo_link"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

type AuditListResponse struct {
	Entries []models.AuditLog `json:"entries"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
