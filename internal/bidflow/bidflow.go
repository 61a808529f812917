// Package bidflow implements the bid lifecycle transitions on an in-memory
// bid. It does no I/O and no authorization; callers load the bid, check the
// actor, apply one of these functions and persist the result.
//
//	Pending --accept--> Accepted --approve--> AwaitingFinalApproval --approve--> Committed
//	Pending --decline--> Declined
//	Pending --cancel--> Cancelled
package bidflow

import (
	"errors"
	"fmt"

	"github.com/backdrop/placement-market/internal/models"
)

var ErrInvalidState = errors.New("invalid state")

// Side identifies which party gives a final approval.
type Side int

const (
	CreatorSide Side = iota
	BuyerSide
)

func (s Side) String() string {
	if s == CreatorSide {
		return "creator"
	}
	return "buyer"
}

func requirePending(b *models.Bid, verb string) error {
	if b.Status != models.BidPending {
		return fmt.Errorf("%w: cannot %s a bid that is %s", ErrInvalidState, verb, b.Status)
	}
	return nil
}

func Accept(b *models.Bid) error {
	if err := requirePending(b, "accept"); err != nil {
		return err
	}
	b.Status = models.BidAccepted
	return nil
}

func Decline(b *models.Bid) error {
	if err := requirePending(b, "decline"); err != nil {
		return err
	}
	b.Status = models.BidDeclined
	return nil
}

func Cancel(b *models.Bid) error {
	if err := requirePending(b, "cancel"); err != nil {
		return err
	}
	b.Status = models.BidCancelled
	return nil
}

// Edit is a guard only: field changes are legal while the bid is pending.
func Edit(b *models.Bid) error {
	return requirePending(b, "edit")
}

// Approve sets the flag for side and commits when both flags are set. It
// reports whether this call moved the bid to Committed. Approving again, or
// approving a committed bid, is a no-op. A single approval leaves a pending bid
// pending and moves an accepted one to AwaitingFinalApproval.
func Approve(b *models.Bid, side Side) (bool, error) {
	switch b.Status {
	case models.BidPending, models.BidAccepted, models.BidAwaitingFinalApproval, models.BidCommitted:
	default:
		return false, fmt.Errorf("%w: cannot approve a bid that is %s", ErrInvalidState, b.Status)
	}

	if side == CreatorSide {
		b.CreatorFinalApproval = true
	} else {
		b.BuyerFinalApproval = true
	}

	if b.Status == models.BidCommitted {
		return false, nil
	}
	if b.CreatorFinalApproval && b.BuyerFinalApproval {
		b.Status = models.BidCommitted
		return true, nil
	}
	if b.Status == models.BidAccepted {
		b.Status = models.BidAwaitingFinalApproval
	}
	return false, nil
}

// DealMemoAvailable reports whether a deal memo can be issued for the bid.
func DealMemoAvailable(b *models.Bid) bool {
	return b.Status.Agreed()
}
