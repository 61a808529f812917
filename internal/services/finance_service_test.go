package services

import (
	"math"
	"testing"

	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
)

func TestParseLeadingAmount(t *testing.T) {
	cases := []struct {
		terms  string
		want   float64
		wantOK bool
	}{
		{"$500 (Fixed)", 500, true},
		{"$5,000 (Fixed)", 5000, true},
		{"1500.50", 1500.5, true},
		{"$750 flat", 750, true},
		{"  $750 flat", 0, false},
		{"Rev share 10%", 0, false},
		{"", 0, false},
		{"1.2.3 units", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.terms, func(t *testing.T) {
			got, ok := ParseLeadingAmount(tc.terms)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ParseLeadingAmount(%q) = %v, %v; want %v, %v", tc.terms, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func commit(t *testing.T, env *testEnv, creator, buyer *models.User, bid *models.Bid) {
	t.Helper()
	id := bid.ID.String()
	if _, err := env.bids.Accept(env.ctx, creator, id); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.bids.Approve(env.ctx, creator, id); err != nil {
		t.Fatalf("creator approve: %v", err)
	}
	if _, err := env.bids.Approve(env.ctx, buyer, id); err != nil {
		t.Fatalf("buyer approve: %v", err)
	}
}

func TestDashboardCoverage(t *testing.T) {
	env := newTestEnv(t)
	creator := env.user(t, models.RoleCreator)
	advertiser := env.user(t, models.RoleAdvertiser)
	project := env.project(t, creator, 1000)
	slot := env.slot(t, creator, project)

	commit(t, env, creator, advertiser, env.bid(t, advertiser, slot, "$500 (Fixed)"))

	dash, err := env.finance.Dashboard(env.ctx, creator)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.PercentageCovered != 50.0 {
		t.Fatalf("expected 50%% coverage, got %v", dash.PercentageCovered)
	}
	if len(dash.Projects) != 1 || dash.Projects[0].CommittedAmount != 500 || dash.Projects[0].PercentageCovered != 50.0 {
		t.Fatalf("unexpected project rows %+v", dash.Projects)
	}
}

func TestDashboardCountsOnlyAgreedBids(t *testing.T) {
	env := newTestEnv(t)
	creator := env.user(t, models.RoleCreator)
	advertiser := env.user(t, models.RoleAdvertiser)
	merchant := env.user(t, models.RoleMerchant)
	funded := env.project(t, creator, 2000)
	empty := env.project(t, creator, 0)
	slot := env.slot(t, creator, funded)
	env.slot(t, creator, empty)

	accepted := env.bid(t, advertiser, slot, "$300 (Fixed)")
	if _, err := env.bids.Accept(env.ctx, creator, accepted.ID.String()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	env.bid(t, merchant, slot, "$9000 (Fixed)")
	declined := env.bid(t, merchant, slot, "$7000")
	if _, err := env.bids.Decline(env.ctx, creator, declined.ID.String()); err != nil {
		t.Fatalf("decline: %v", err)
	}
	unreadable := env.bid(t, merchant, slot, "Negotiable")
	if _, err := env.bids.Accept(env.ctx, creator, unreadable.ID.String()); err != nil {
		t.Fatalf("accept: %v", err)
	}

	amount := 200.0
	structured, err := env.bids.Create(env.ctx, advertiser, &dto.CreateBidRequest{
		SlotID:       slot.ID.String(),
		Objective:    models.ObjectiveConversions,
		PricingModel: models.PricingRevShare,
		AmountTerms:  "$99999 (ignored)",
		Amount:       &amount,
	})
	if err != nil {
		t.Fatalf("create structured bid: %v", err)
	}
	commit(t, env, creator, advertiser, structured)

	dash, err := env.finance.Dashboard(env.ctx, creator)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalBudgetTarget != 2000 || dash.TotalCommittedAmount != 500 {
		t.Fatalf("unexpected totals %+v", dash)
	}
	if dash.PercentageCovered != 25 {
		t.Fatalf("expected 25%% coverage, got %v", dash.PercentageCovered)
	}
	for _, row := range dash.Projects {
		if row.ID == empty.ID && (row.CommittedAmount != 0 || row.PercentageCovered != 0) {
			t.Fatalf("zero-budget project should report zero coverage, got %+v", row)
		}
	}

	other, err := env.finance.Dashboard(env.ctx, env.user(t, models.RoleCreator))
	if err != nil {
		t.Fatalf("dashboard for new creator: %v", err)
	}
	if len(other.Projects) != 0 || other.PercentageCovered != 0 {
		t.Fatalf("expected empty dashboard, got %+v", other)
	}

	_, err = env.finance.Dashboard(env.ctx, advertiser)
	expectErr(t, err, ErrForbidden)
}

func TestOperatorOverview(t *testing.T) {
	env := newTestEnv(t)
	operator := env.user(t, models.RoleOperator)
	advertiser := env.user(t, models.RoleAdvertiser)
	for _, budget := range []float64{1000, 3000} {
		creator := env.user(t, models.RoleCreator)
		slot := env.slot(t, creator, env.project(t, creator, budget))
		commit(t, env, creator, advertiser, env.bid(t, advertiser, slot, "$1,250 (Fixed)"))
		env.bid(t, advertiser, slot, "$400")
	}

	ov, err := env.finance.OperatorOverview(env.ctx, operator)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.TotalBudgets != 4000 || ov.TotalCommitted != 2500 {
		t.Fatalf("unexpected totals %+v", ov)
	}
	if math.Abs(ov.MarketplaceMargin-250) > 1e-9 {
		t.Fatalf("expected margin 250, got %v", ov.MarketplaceMargin)
	}
	if ov.CommittedBidCount != 2 || ov.ProjectCount != 2 {
		t.Fatalf("unexpected counts %+v", ov)
	}

	_, err = env.finance.OperatorOverview(env.ctx, advertiser)
	expectErr(t, err, ErrForbidden)
}
