package models

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidPending               BidStatus = "Pending"
	BidAccepted              BidStatus = "Accepted"
	BidAwaitingFinalApproval BidStatus = "AwaitingFinalApproval"
	BidDeclined              BidStatus = "Declined"
	BidCommitted             BidStatus = "Committed"
	BidCancelled             BidStatus = "Cancelled"
)

// Terminal reports whether no further status change is possible.
func (s BidStatus) Terminal() bool {
	return s == BidDeclined || s == BidCancelled || s == BidCommitted
}

// Agreed reports whether the bid counts toward financing totals.
func (s BidStatus) Agreed() bool {
	return s == BidAccepted || s == BidAwaitingFinalApproval || s == BidCommitted
}

type BidObjective string

const (
	ObjectiveReach       BidObjective = "Reach"
	ObjectiveConversions BidObjective = "Conversions"
)

type PricingModel string

const (
	PricingFixed    PricingModel = "Fixed"
	PricingRevShare PricingModel = "Rev-Share"
	PricingHybrid   PricingModel = "Hybrid"
)

// Bid is an offer on a slot. Bids are never deleted; Declined and Cancelled
// are kept for audit. Version is the optimistic concurrency token.
type Bid struct {
	ID                   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SlotID               uuid.UUID    `gorm:"type:uuid;not null;index" json:"slot_id"`
	CounterpartyID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"counterparty_id"`
	Objective            BidObjective `gorm:"size:20;not null" json:"objective"`
	PricingModel         PricingModel `gorm:"size:20;not null" json:"pricing_model"`
	AmountTerms          string       `gorm:"type:text" json:"amount_terms"`
	Amount               *float64     `json:"amount,omitempty"`
	FlightWindow         string       `gorm:"size:255" json:"flight_window"`
	Status               BidStatus    `gorm:"size:30;not null;index" json:"status"`
	CreatorFinalApproval bool         `gorm:"not null;default:false" json:"creator_final_approval"`
	BuyerFinalApproval   bool         `gorm:"not null;default:false" json:"buyer_final_approval"`
	Version              int          `gorm:"not null;default:1" json:"-"`
	Comments             []BidComment `gorm:"foreignKey:BidID" json:"comments"`
	CreatedAt            time.Time    `gorm:"<-:create" json:"created_date"`
	UpdatedAt            time.Time    `json:"last_modified_date"`
}

// BidComment is immutable once appended. Position orders the thread.
type BidComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BidID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bid_comment_position" json:"-"`
	Position  int       `gorm:"not null;uniqueIndex:idx_bid_comment_position" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
