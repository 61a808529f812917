package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// agreedStatuses are the bid states counted as commitments.
var agreedStatuses = []models.BidStatus{
	models.BidAccepted,
	models.BidAwaitingFinalApproval,
	models.BidCommitted,
}

type FinanceService struct {
	db         *gorm.DB
	marginRate float64
}

func NewFinanceService(db *gorm.DB, marginRate float64) *FinanceService {
	return &FinanceService{db: db, marginRate: marginRate}
}

// ParseLeadingAmount reads the number at the start of free-text terms such as
// "$5,000 (Fixed)". Only the first space-delimited token is considered and
// anything but digits and dots is dropped from it, so leading spaces yield an
// empty token. ok is false when no number can be read.
func ParseLeadingAmount(terms string) (amount float64, ok bool) {
	token := strings.SplitN(terms, " ", 2)[0]
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, token)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// bidAmount prefers the structured amount and falls back to the terms text.
// Unreadable terms contribute nothing.
func bidAmount(b *models.Bid) float64 {
	if b.Amount != nil {
		return *b.Amount
	}
	v, _ := ParseLeadingAmount(b.AmountTerms)
	return v
}

func coverage(committed, target float64) float64 {
	if target == 0 {
		return 0
	}
	return committed / target * 100
}

// Dashboard rolls up agreed bid amounts against each of the creator's
// project budgets.
func (s *FinanceService) Dashboard(ctx context.Context, actor *models.User) (*dto.FinancingDashboard, error) {
	if err := access.Authorize(actor, access.FinanceDashboard, access.Facts{}); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var projects []models.Project
	if err := db.Where("creator_id = ?", actor.ID).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, storageErr("list projects", err)
	}

	out := &dto.FinancingDashboard{Projects: make([]dto.ProjectFinancing, 0, len(projects))}
	if len(projects) == 0 {
		return out, nil
	}

	projectIDs := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}
	var slots []models.Slot
	if err := db.Select("id", "project_id").Where("project_id IN ?", projectIDs).Find(&slots).Error; err != nil {
		return nil, storageErr("list slots", err)
	}
	slotProject := make(map[uuid.UUID]uuid.UUID, len(slots))
	slotIDs := make([]uuid.UUID, len(slots))
	for i, sl := range slots {
		slotProject[sl.ID] = sl.ProjectID
		slotIDs[i] = sl.ID
	}

	committedByProject := make(map[uuid.UUID]float64, len(projects))
	if len(slotIDs) > 0 {
		bids, err := agreedBids(db.Where("slot_id IN ?", slotIDs))
		if err != nil {
			return nil, err
		}
		for i := range bids {
			committedByProject[slotProject[bids[i].SlotID]] += bidAmount(&bids[i])
		}
	}

	for _, p := range projects {
		committed := committedByProject[p.ID]
		out.Projects = append(out.Projects, dto.ProjectFinancing{
			Project:           p,
			CommittedAmount:   committed,
			PercentageCovered: coverage(committed, p.BudgetTarget),
		})
		out.TotalBudgetTarget += p.BudgetTarget
		out.TotalCommittedAmount += committed
	}
	out.PercentageCovered = coverage(out.TotalCommittedAmount, out.TotalBudgetTarget)
	return out, nil
}

// OperatorOverview applies the dashboard rollup across the whole marketplace.
func (s *FinanceService) OperatorOverview(ctx context.Context, actor *models.User) (*dto.OperatorOverview, error) {
	if err := access.Authorize(actor, access.FinanceOverview, access.Facts{}); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var projects []models.Project
	if err := db.Select("id", "budget_target").Find(&projects).Error; err != nil {
		return nil, storageErr("list projects", err)
	}
	bids, err := agreedBids(db)
	if err != nil {
		return nil, err
	}

	out := &dto.OperatorOverview{ProjectCount: len(projects), CommittedBidCount: len(bids)}
	for _, p := range projects {
		out.TotalBudgets += p.BudgetTarget
	}
	for i := range bids {
		out.TotalCommitted += bidAmount(&bids[i])
	}
	out.MarketplaceMargin = out.TotalCommitted * s.marginRate
	return out, nil
}

func agreedBids(query *gorm.DB) ([]models.Bid, error) {
	var bids []models.Bid
	err := query.Select("id", "slot_id", "amount_terms", "amount", "status").
		Where("status IN ?", agreedStatuses).
		Find(&bids).Error
	if err != nil {
		return nil, storageErr("list bids", err)
	}
	return bids, nil
}
