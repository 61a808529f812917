package handlers

import (
	"context"

	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/middleware"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BidHandler struct {
	bids *services.BidService
}

func NewBidHandler(bids *services.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

func (h *BidHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	bid, err := h.bids.Create(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

func (h *BidHandler) List(c *fiber.Ctx) error {
	bids, err := h.bids.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bids)
}

func (h *BidHandler) ListForSlot(c *fiber.Ctx) error {
	bids, err := h.bids.ListForSlot(c.UserContext(), middleware.Actor(c), c.Params("slot_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bids)
}

func (h *BidHandler) Get(c *fiber.Ctx) error {
	bid, err := h.bids.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bid)
}

func (h *BidHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	bid, err := h.bids.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bid)
}

type transitionFunc func(ctx context.Context, actor *models.User, id string) (*models.Bid, error)

func (h *BidHandler) transition(c *fiber.Ctx, fn transitionFunc) error {
	bid, err := fn(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bid)
}

// Cancel handles DELETE. Bids are cancelled, never removed.
func (h *BidHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.bids.Cancel)
}

func (h *BidHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, h.bids.Accept)
}

func (h *BidHandler) Decline(c *fiber.Ctx) error {
	return h.transition(c, h.bids.Decline)
}

func (h *BidHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.bids.Approve)
}

func (h *BidHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	bid, err := h.bids.AddComment(c.UserContext(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

func (h *BidHandler) DealMemo(c *fiber.Ctx) error {
	memo, err := h.bids.DealMemo(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(memo)
}

func (h *BidHandler) EvidencePack(c *fiber.Ctx) error {
	pack, err := h.bids.EvidencePack(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pack)
}
