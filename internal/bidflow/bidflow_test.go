package bidflow

import (
	"errors"
	"testing"

	"github.com/backdrop/placement-market/internal/models"
)

var allStatuses = []models.BidStatus{
	models.BidPending,
	models.BidAccepted,
	models.BidAwaitingFinalApproval,
	models.BidDeclined,
	models.BidCommitted,
	models.BidCancelled,
}

func TestPendingOnlyTransitions(t *testing.T) {
	transitions := []struct {
		name string
		fn   func(*models.Bid) error
		to   models.BidStatus
	}{
		{"accept", Accept, models.BidAccepted},
		{"decline", Decline, models.BidDeclined},
		{"cancel", Cancel, models.BidCancelled},
		{"edit", Edit, models.BidPending},
	}

	for _, tr := range transitions {
		for _, from := range allStatuses {
			b := &models.Bid{Status: from}
			err := tr.fn(b)
			if from == models.BidPending {
				if err != nil {
					t.Fatalf("%s from pending: unexpected error %v", tr.name, err)
				}
				if b.Status != tr.to {
					t.Fatalf("%s from pending: expected %s, got %s", tr.name, tr.to, b.Status)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("%s from %s: expected ErrInvalidState, got %v", tr.name, from, err)
			}
			if b.Status != from {
				t.Fatalf("%s from %s: status changed to %s", tr.name, from, b.Status)
			}
		}
	}
}

func TestApproveBothSidesCommits(t *testing.T) {
	b := &models.Bid{Status: models.BidAccepted}

	committed, err := Approve(b, CreatorSide)
	if err != nil || committed {
		t.Fatalf("first approval: committed=%v err=%v", committed, err)
	}
	if b.Status != models.BidAwaitingFinalApproval || !b.CreatorFinalApproval {
		t.Fatalf("expected awaiting final approval with creator flag, got %+v", b)
	}

	committed, err = Approve(b, CreatorSide)
	if err != nil || committed {
		t.Fatalf("repeat creator approval: committed=%v err=%v", committed, err)
	}

	committed, err = Approve(b, BuyerSide)
	if err != nil {
		t.Fatalf("buyer approval failed: %v", err)
	}
	if !committed || b.Status != models.BidCommitted {
		t.Fatalf("expected commit, got committed=%v status=%s", committed, b.Status)
	}

	for _, side := range []Side{CreatorSide, BuyerSide} {
		committed, err = Approve(b, side)
		if err != nil || committed {
			t.Fatalf("approval after commit: committed=%v err=%v", committed, err)
		}
		if b.Status != models.BidCommitted {
			t.Fatalf("status left committed: %s", b.Status)
		}
	}
}

func TestApprovePendingBid(t *testing.T) {
	b := &models.Bid{Status: models.BidPending}

	committed, err := Approve(b, BuyerSide)
	if err != nil || committed {
		t.Fatalf("first approval: committed=%v err=%v", committed, err)
	}
	if !b.BuyerFinalApproval || b.Status != models.BidPending {
		t.Fatalf("expected pending with buyer flag, got status=%s flag=%v", b.Status, b.BuyerFinalApproval)
	}

	committed, err = Approve(b, CreatorSide)
	if err != nil || !committed || b.Status != models.BidCommitted {
		t.Fatalf("expected commit, got committed=%v status=%s err=%v", committed, b.Status, err)
	}
}

func TestApproveRejectedOnTerminalBids(t *testing.T) {
	for _, from := range []models.BidStatus{models.BidDeclined, models.BidCancelled} {
		b := &models.Bid{Status: from}
		if _, err := Approve(b, BuyerSide); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("approve from %s: expected ErrInvalidState, got %v", from, err)
		}
		if b.BuyerFinalApproval {
			t.Fatalf("approve from %s set the flag", from)
		}
	}
}

func TestDealMemoAvailable(t *testing.T) {
	want := map[models.BidStatus]bool{
		models.BidAccepted:              true,
		models.BidAwaitingFinalApproval: true,
		models.BidCommitted:             true,
	}
	for _, s := range allStatuses {
		if got := DealMemoAvailable(&models.Bid{Status: s}); got != want[s] {
			t.Errorf("%s: got %v want %v", s, got, want[s])
		}
	}
}
