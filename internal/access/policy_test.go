package access

import (
	"errors"
	"testing"

	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
)

func user(r models.Role) *models.User {
	return &models.User{ID: uuid.New(), Role: r}
}

func TestAuthorize(t *testing.T) {
	creatorA := user(models.RoleCreator)
	creatorB := user(models.RoleCreator)
	advertiser := user(models.RoleAdvertiser)
	merchant := user(models.RoleMerchant)
	op := user(models.RoleOperator)

	bidFacts := Facts{OwnerID: creatorA.ID, CounterpartyID: advertiser.ID}

	cases := []struct {
		name   string
		actor  *models.User
		action Action
		facts  Facts
		allow  bool
	}{
		{"operator lists users", op, UserList, Facts{}, true},
		{"creator cannot list users", creatorA, UserList, Facts{}, false},
		{"creator creates project", creatorA, ProjectCreate, Facts{}, true},
		{"merchant cannot create project", merchant, ProjectCreate, Facts{}, false},
		{"merchant cannot create slot", merchant, SlotCreate, Facts{OwnerID: merchant.ID}, false},
		{"owner creates slot", creatorA, SlotCreate, Facts{OwnerID: creatorA.ID}, true},
		{"other creator cannot create slot", creatorB, SlotCreate, Facts{OwnerID: creatorA.ID}, false},
		{"buyer reads project", advertiser, ProjectRead, Facts{OwnerID: creatorA.ID}, true},
		{"other creator cannot read project", creatorB, ProjectRead, Facts{OwnerID: creatorA.ID}, false},
		{"advertiser bids", advertiser, BidCreate, Facts{}, true},
		{"creator cannot bid", creatorA, BidCreate, Facts{}, false},
		{"slot owner accepts", creatorA, BidAccept, bidFacts, true},
		{"counterparty cannot accept", advertiser, BidAccept, bidFacts, false},
		{"counterparty cancels", advertiser, BidCancel, bidFacts, true},
		{"slot owner cannot cancel", creatorA, BidCancel, bidFacts, false},
		{"slot owner approves", creatorA, BidApprove, bidFacts, true},
		{"counterparty approves", advertiser, BidApprove, bidFacts, true},
		{"operator cannot approve", op, BidApprove, bidFacts, false},
		{"outsider cannot comment", creatorB, BidComment, bidFacts, false},
		{"operator reads deal memo", op, BidDealMemo, bidFacts, true},
		{"creator cannot build evidence pack", creatorA, BidEvidencePack, bidFacts, false},
		{"operator builds evidence pack", op, BidEvidencePack, bidFacts, true},
		{"merchant edits own sku", merchant, SKUUpdate, Facts{OwnerID: merchant.ID}, true},
		{"advertiser cannot upload sku image", advertiser, SKUUpload, Facts{}, false},
		{"creator dashboard", creatorA, FinanceDashboard, Facts{}, true},
		{"operator dashboard denied", op, FinanceDashboard, Facts{}, false},
		{"nil owner never matches", creatorA, ProjectUpdate, Facts{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, tc.facts)
			if tc.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tc.allow && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorizeUnknownActionDenied(t *testing.T) {
	if err := Authorize(user(models.RoleOperator), Action("nope"), Facts{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEveryActionHasRule(t *testing.T) {
	actions := []Action{
		UserList, ProjectCreate, ProjectRead, ProjectUpdate, ProjectDelete,
		SlotCreate, SlotUpdate, SlotDelete,
		SKUList, SKURead, SKUCreate, SKUUpdate, SKUDelete, SKUUpload,
		BidCreate, BidRead, BidListForSlot, BidEdit, BidCancel, BidAccept, BidDecline,
		BidApprove, BidComment, BidDealMemo, BidEvidencePack,
		FinanceDashboard, FinanceOverview, AuditList,
	}
	for _, a := range actions {
		if _, ok := policy[a]; !ok {
			t.Errorf("missing rule for %s", a)
		}
	}
}
