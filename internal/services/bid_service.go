package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/bidflow"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/events"
	"github.com/backdrop/placement-market/internal/metrics"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dealMemoPlaceholder = "This is a placeholder for the Deal Memo PDF."

// errVersionConflict aborts an attempt whose version check lost to another
// writer. It never leaves the service.
var errVersionConflict = errors.New("bid version conflict")

// eventPublishTimeout bounds the best-effort event write after a commit.
const eventPublishTimeout = 5 * time.Second

type BidService struct {
	db      *gorm.DB
	events  events.Publisher
	metrics *metrics.Metrics
	retries int
}

func NewBidService(db *gorm.DB, publisher events.Publisher, m *metrics.Metrics, retries int) *BidService {
	if retries < 1 {
		retries = 1
	}
	return &BidService{db: db, events: publisher, metrics: m, retries: retries}
}

func bidFacts(bid *models.Bid, slot *models.Slot) access.Facts {
	return access.Facts{OwnerID: slot.CreatorID, CounterpartyID: bid.CounterpartyID}
}

func withComments(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// loadBidAndSlot fails with NotFound for a missing bid or a bid whose slot
// no longer exists.
func loadBidAndSlot(db *gorm.DB, id uuid.UUID) (*models.Bid, *models.Slot, error) {
	var bid models.Bid
	if err := withComments(db).First(&bid, "id = ?", id).Error; err != nil {
		return nil, nil, lookupErr(err, "bid")
	}
	if bid.Comments == nil {
		bid.Comments = []models.BidComment{}
	}
	var slot models.Slot
	if err := db.First(&slot, "id = ?", bid.SlotID).Error; err != nil {
		return nil, nil, lookupErr(err, "slot")
	}
	return &bid, &slot, nil
}

func (s *BidService) Create(ctx context.Context, actor *models.User, req *dto.CreateBidRequest) (*models.Bid, error) {
	if err := access.Authorize(actor, access.BidCreate, access.Facts{}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	slotID, err := parseID(req.SlotID, "slot")
	if err != nil {
		return nil, err
	}
	var slot models.Slot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
		return nil, lookupErr(err, "slot")
	}

	bid := models.Bid{
		ID:             uuid.New(),
		SlotID:         slot.ID,
		CounterpartyID: actor.ID,
		Objective:      req.Objective,
		PricingModel:   req.PricingModel,
		AmountTerms:    req.AmountTerms,
		Amount:         req.Amount,
		FlightWindow:   req.FlightWindow,
		Status:         models.BidPending,
		Version:        1,
		Comments:       []models.BidComment{},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Comments").Create(&bid).Error; err != nil {
			return err
		}
		return recordAudit(tx, actor.ID, "bid.create", "bid", bid.ID, map[string]interface{}{
			"slot_id": slot.ID.String(),
			"status":  string(bid.Status),
		})
	})
	if err != nil {
		return nil, storageErr("create bid", err)
	}

	slog.Info("bid created", "bid_id", bid.ID.String(), "slot_id", slot.ID.String(), "user_id", actor.ID.String())
	s.afterCommit(ctx, actor, &bid, "create")
	return &bid, nil
}

// List returns the bids visible to actor: a buyer's own bids, the bids on a
// creator's slots, or every bid for an operator.
func (s *BidService) List(ctx context.Context, actor *models.User) ([]models.Bid, error) {
	query := withComments(s.db.WithContext(ctx)).Order("created_at DESC")
	switch {
	case actor.Role == models.RoleOperator:
	case actor.Role == models.RoleCreator:
		owned := s.db.Model(&models.Slot{}).Select("id").Where("creator_id = ?", actor.ID)
		query = query.Where("slot_id IN (?)", owned)
	case actor.Role.IsBuyer():
		query = query.Where("counterparty_id = ?", actor.ID)
	default:
		return nil, access.Authorize(actor, access.BidRead, access.Facts{})
	}

	bids := []models.Bid{}
	if err := query.Find(&bids).Error; err != nil {
		return nil, storageErr("list bids", err)
	}
	return normalizeComments(bids), nil
}

func (s *BidService) ListForSlot(ctx context.Context, actor *models.User, rawSlotID string) ([]models.Bid, error) {
	slotID, err := parseID(rawSlotID, "slot")
	if err != nil {
		return nil, err
	}
	var slot models.Slot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
		return nil, lookupErr(err, "slot")
	}
	if err := access.Authorize(actor, access.BidListForSlot, access.Facts{OwnerID: slot.CreatorID}); err != nil {
		return nil, err
	}

	bids := []models.Bid{}
	if err := withComments(s.db.WithContext(ctx)).Where("slot_id = ?", slot.ID).Order("created_at ASC").Find(&bids).Error; err != nil {
		return nil, storageErr("list slot bids", err)
	}
	return normalizeComments(bids), nil
}

func normalizeComments(bids []models.Bid) []models.Bid {
	for i := range bids {
		if bids[i].Comments == nil {
			bids[i].Comments = []models.BidComment{}
		}
	}
	return bids
}

func (s *BidService) Get(ctx context.Context, actor *models.User, rawID string) (*models.Bid, error) {
	id, err := parseID(rawID, "bid")
	if err != nil {
		return nil, err
	}
	bid, slot, err := loadBidAndSlot(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.BidRead, bidFacts(bid, slot)); err != nil {
		return nil, err
	}
	return bid, nil
}

func (s *BidService) Update(ctx context.Context, actor *models.User, rawID string, req *dto.UpdateBidRequest) (*models.Bid, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, rawID, "edit", func(_ *gorm.DB, bid *models.Bid, slot *models.Slot) (bool, error) {
		if err := access.Authorize(actor, access.BidEdit, bidFacts(bid, slot)); err != nil {
			return false, err
		}
		if err := bidflow.Edit(bid); err != nil {
			return false, err
		}
		if req.Objective != nil {
			bid.Objective = *req.Objective
		}
		if req.PricingModel != nil {
			bid.PricingModel = *req.PricingModel
		}
		if req.AmountTerms != nil {
			bid.AmountTerms = *req.AmountTerms
		}
		if req.Amount != nil {
			bid.Amount = req.Amount
		}
		if req.FlightWindow != nil {
			bid.FlightWindow = *req.FlightWindow
		}
		return true, nil
	})
}

func (s *BidService) Cancel(ctx context.Context, actor *models.User, rawID string) (*models.Bid, error) {
	return s.transition(ctx, actor, rawID, "cancel", access.BidCancel, bidflow.Cancel)
}

func (s *BidService) Accept(ctx context.Context, actor *models.User, rawID string) (*models.Bid, error) {
	return s.transition(ctx, actor, rawID, "accept", access.BidAccept, bidflow.Accept)
}

func (s *BidService) Decline(ctx context.Context, actor *models.User, rawID string) (*models.Bid, error) {
	return s.transition(ctx, actor, rawID, "decline", access.BidDecline, bidflow.Decline)
}

func (s *BidService) transition(ctx context.Context, actor *models.User, rawID, name string, action access.Action, apply func(*models.Bid) error) (*models.Bid, error) {
	return s.mutate(ctx, actor, rawID, name, func(_ *gorm.DB, bid *models.Bid, slot *models.Slot) (bool, error) {
		if err := access.Authorize(actor, action, bidFacts(bid, slot)); err != nil {
			return false, err
		}
		if err := apply(bid); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Approve records the actor's final approval. The slot's creator approves the
// creator side, the bidder the buyer side. Repeating an approval changes
// nothing and writes nothing.
func (s *BidService) Approve(ctx context.Context, actor *models.User, rawID string) (*models.Bid, error) {
	return s.mutate(ctx, actor, rawID, "approve", func(_ *gorm.DB, bid *models.Bid, slot *models.Slot) (bool, error) {
		if err := access.Authorize(actor, access.BidApprove, bidFacts(bid, slot)); err != nil {
			return false, err
		}
		side := bidflow.BuyerSide
		if actor.ID == slot.CreatorID {
			side = bidflow.CreatorSide
		}

		before := *bid
		committed, err := bidflow.Approve(bid, side)
		if err != nil {
			return false, err
		}
		if committed {
			slog.Info("bid committed", "bid_id", bid.ID.String(), "slot_id", slot.ID.String())
		}
		return bid.Status != before.Status ||
			bid.CreatorFinalApproval != before.CreatorFinalApproval ||
			bid.BuyerFinalApproval != before.BuyerFinalApproval, nil
	})
}

// AddComment appends to the thread on a bid in any status.
func (s *BidService) AddComment(ctx context.Context, actor *models.User, rawID string, req *dto.CommentRequest) (*models.Bid, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, rawID, "comment", func(tx *gorm.DB, bid *models.Bid, slot *models.Slot) (bool, error) {
		if err := access.Authorize(actor, access.BidComment, bidFacts(bid, slot)); err != nil {
			return false, err
		}
		comment := models.BidComment{
			ID:        uuid.New(),
			BidID:     bid.ID,
			Position:  len(bid.Comments),
			AuthorID:  actor.ID,
			Text:      req.Text,
			Timestamp: time.Now().UTC(),
		}
		if err := tx.Create(&comment).Error; err != nil {
			return false, storageErr("append comment", err)
		}
		bid.Comments = append(bid.Comments, comment)
		return true, nil
	})
}

// mutation applies one change to a freshly loaded bid inside the write
// transaction. It reports whether the bid changed; unchanged bids are not
// written.
type mutation func(tx *gorm.DB, bid *models.Bid, slot *models.Slot) (bool, error)

// mutate runs fn under the bid's version check and retries from a fresh read
// when another writer got there first.
func (s *BidService) mutate(ctx context.Context, actor *models.User, rawID, action string, fn mutation) (*models.Bid, error) {
	id, err := parseID(rawID, "bid")
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		var (
			result  *models.Bid
			changed bool
		)
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			bid, slot, err := loadBidAndSlot(tx, id)
			if err != nil {
				return err
			}
			changed, err = fn(tx, bid, slot)
			if err != nil {
				return err
			}
			result = bid
			if !changed {
				return nil
			}

			now := time.Now().UTC()
			res := tx.Model(&models.Bid{}).
				Where("id = ? AND version = ?", bid.ID, bid.Version).
				Updates(map[string]interface{}{
					"objective":              bid.Objective,
					"pricing_model":          bid.PricingModel,
					"amount_terms":           bid.AmountTerms,
					"amount":                 bid.Amount,
					"flight_window":          bid.FlightWindow,
					"status":                 bid.Status,
					"creator_final_approval": bid.CreatorFinalApproval,
					"buyer_final_approval":   bid.BuyerFinalApproval,
					"version":                bid.Version + 1,
					"updated_at":             now,
				})
			if res.Error != nil {
				return storageErr("update bid", res.Error)
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			bid.Version++
			bid.UpdatedAt = now

			return recordAudit(tx, actor.ID, "bid."+action, "bid", bid.ID, map[string]interface{}{
				"status":                 string(bid.Status),
				"creator_final_approval": bid.CreatorFinalApproval,
				"buyer_final_approval":   bid.BuyerFinalApproval,
			})
		})

		if errors.Is(err, errVersionConflict) {
			s.metrics.BidConflicts.Inc()
			slog.Warn("bid write conflict, retrying", "bid_id", id.String(), "action", action, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		if changed {
			slog.Info("bid updated", "bid_id", result.ID.String(), "action", action, "status", string(result.Status), "user_id", actor.ID.String())
			s.afterCommit(ctx, actor, result, action)
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrConcurrentUpdate, s.retries)
}

// afterCommit records metrics and publishes the lifecycle event. A failed
// publish is logged and does not undo the persisted change.
func (s *BidService) afterCommit(ctx context.Context, actor *models.User, bid *models.Bid, action string) {
	s.metrics.BidTransitions.WithLabelValues(action, string(bid.Status)).Inc()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	event := events.BidEvent{
		Type:           "bid." + action,
		BidID:          bid.ID,
		SlotID:         bid.SlotID,
		CounterpartyID: bid.CounterpartyID,
		ActorID:        actor.ID,
		Status:         string(bid.Status),
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.events.PublishBidEvent(pubCtx, event); err != nil {
		slog.Warn("failed to publish bid event", "bid_id", bid.ID.String(), "type", event.Type, "error", err.Error())
	}
}

// DealMemo returns the placeholder memo for a bid both sides have agreed on.
func (s *BidService) DealMemo(ctx context.Context, actor *models.User, rawID string) (*dto.DealMemoResponse, error) {
	id, err := parseID(rawID, "bid")
	if err != nil {
		return nil, err
	}
	bid, slot, err := loadBidAndSlot(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.BidDealMemo, bidFacts(bid, slot)); err != nil {
		return nil, err
	}
	if !bidflow.DealMemoAvailable(bid) {
		return nil, fmt.Errorf("%w: deal memo is only available for accepted or committed bids", ErrInvalidState)
	}
	return &dto.DealMemoResponse{
		DealID:       bid.ID,
		Content:      dealMemoPlaceholder,
		DownloadLink: fmt.Sprintf("/static/uploads/deal_memos/%s.pdf", bid.ID),
	}, nil
}

// EvidencePack snapshots a bid with its slot and project for operator audit.
func (s *BidService) EvidencePack(ctx context.Context, actor *models.User, rawID string) (*dto.EvidencePack, error) {
	if err := access.Authorize(actor, access.BidEvidencePack, access.Facts{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "bid")
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	bid, slot, err := loadBidAndSlot(db, id)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := db.First(&project, "id = ?", slot.ProjectID).Error; err != nil {
		return nil, lookupErr(err, "project")
	}

	return &dto.EvidencePack{
		DealID:       bid.ID,
		Status:       bid.Status,
		Bid:          bid,
		Slot:         slot,
		Project:      &project,
		DealMemoLink: fmt.Sprintf("/api/v1/bids/%s/deal_memo", bid.ID),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
