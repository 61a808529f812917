// Package access holds the authorization policy for every state-changing or
// tenant-scoped operation. Rules are evaluated per call and never cached.
package access

import (
	"errors"
	"fmt"

	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden")

type Action string

const (
	UserList Action = "user.list"

	ProjectCreate Action = "project.create"
	ProjectRead   Action = "project.read"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"

	SlotCreate Action = "slot.create"
	SlotUpdate Action = "slot.update"
	SlotDelete Action = "slot.delete"

	SKUList   Action = "sku.list"
	SKURead   Action = "sku.read"
	SKUCreate Action = "sku.create"
	SKUUpdate Action = "sku.update"
	SKUDelete Action = "sku.delete"
	SKUUpload Action = "sku.upload_image"

	BidCreate       Action = "bid.create"
	BidRead         Action = "bid.read"
	BidListForSlot  Action = "bid.list_for_slot"
	BidEdit         Action = "bid.edit"
	BidCancel       Action = "bid.cancel"
	BidAccept       Action = "bid.accept"
	BidDecline      Action = "bid.decline"
	BidApprove      Action = "bid.approve"
	BidComment      Action = "bid.comment"
	BidDealMemo     Action = "bid.deal_memo"
	BidEvidencePack Action = "bid.evidence_pack"

	FinanceDashboard Action = "finance.dashboard"
	FinanceOverview  Action = "finance.overview"
	AuditList        Action = "audit.list"
)

// Facts describe the resource an action targets. OwnerID is the owning
// creator or merchant; for bids it is the creator of the bid's slot.
type Facts struct {
	OwnerID        uuid.UUID
	CounterpartyID uuid.UUID
}

type predicate func(actor *models.User, f Facts) bool

type rule struct {
	allow  predicate
	denial string
}

func role(roles ...models.Role) predicate {
	return func(actor *models.User, _ Facts) bool {
		for _, r := range roles {
			if actor.Role == r {
				return true
			}
		}
		return false
	}
}

func owner(actor *models.User, f Facts) bool {
	return f.OwnerID != uuid.Nil && actor.ID == f.OwnerID
}

func counterparty(actor *models.User, f Facts) bool {
	return f.CounterpartyID != uuid.Nil && actor.ID == f.CounterpartyID
}

func allOf(ps ...predicate) predicate {
	return func(actor *models.User, f Facts) bool {
		for _, p := range ps {
			if !p(actor, f) {
				return false
			}
		}
		return true
	}
}

func anyOf(ps ...predicate) predicate {
	return func(actor *models.User, f Facts) bool {
		for _, p := range ps {
			if p(actor, f) {
				return true
			}
		}
		return false
	}
}

var (
	operator     = role(models.RoleOperator)
	creator      = role(models.RoleCreator)
	merchant     = role(models.RoleMerchant)
	buyer        = role(models.RoleAdvertiser, models.RoleMerchant)
	ownerCreator = allOf(creator, owner)
	ownerMerch   = allOf(merchant, owner)
)

var policy = map[Action]rule{
	UserList: {operator, "only operators can list users"},

	ProjectCreate: {creator, "only creators can create projects"},
	ProjectRead:   {anyOf(operator, buyer, ownerCreator), "not authorized to view this project"},
	ProjectUpdate: {ownerCreator, "not authorized to update this project"},
	ProjectDelete: {ownerCreator, "not authorized to delete this project"},

	SlotCreate: {ownerCreator, "only the project's creator can add slots"},
	SlotUpdate: {ownerCreator, "not authorized to update this slot"},
	SlotDelete: {ownerCreator, "not authorized to delete this slot"},

	SKUList:   {merchant, "only merchants can view their SKUs"},
	SKURead:   {anyOf(ownerMerch, operator), "not authorized to view this SKU"},
	SKUCreate: {merchant, "only merchants can create SKUs"},
	SKUUpdate: {ownerMerch, "not authorized to update this SKU"},
	SKUDelete: {ownerMerch, "not authorized to delete this SKU"},
	SKUUpload: {merchant, "only merchants can upload SKU images"},

	BidCreate:       {buyer, "only advertisers and merchants can place bids"},
	BidRead:         {anyOf(counterparty, ownerCreator, operator), "not authorized to view this bid"},
	BidListForSlot:  {anyOf(ownerCreator, operator), "not authorized to view bids for this slot"},
	BidEdit:         {counterparty, "not authorized to update this bid"},
	BidCancel:       {counterparty, "not authorized to cancel this bid"},
	BidAccept:       {ownerCreator, "only the slot owner can accept bids"},
	BidDecline:      {ownerCreator, "only the slot owner can decline bids"},
	BidApprove:      {anyOf(owner, counterparty), "not authorized to approve this deal"},
	BidComment:      {anyOf(owner, counterparty), "not authorized to comment on this bid"},
	BidDealMemo:     {anyOf(owner, counterparty, operator), "not authorized to access deal memo"},
	BidEvidencePack: {operator, "only operators can generate evidence packs"},

	FinanceDashboard: {creator, "only creators can access financing dashboard"},
	FinanceOverview:  {operator, "only operators can access this view"},
	AuditList:        {operator, "only operators can review the audit trail"},
}

// Authorize returns nil when actor may perform action on the resource
// described by f, and an error wrapping ErrForbidden otherwise. Unknown
// actions are denied.
func Authorize(actor *models.User, action Action, f Facts) error {
	r, ok := policy[action]
	if !ok {
		return fmt.Errorf("%w: no rule for %s", ErrForbidden, action)
	}
	if actor == nil || !r.allow(actor, f) {
		return fmt.Errorf("%w: %s", ErrForbidden, r.denial)
	}
	return nil
}
