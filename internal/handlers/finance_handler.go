package handlers

import (
	"github.com/backdrop/placement-market/internal/middleware"
	"github.com/backdrop/placement-market/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FinanceHandler struct {
	finance *services.FinanceService
	audit   *services.AuditService
}

func NewFinanceHandler(finance *services.FinanceService, audit *services.AuditService) *FinanceHandler {
	return &FinanceHandler{finance: finance, audit: audit}
}

func (h *FinanceHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.finance.Dashboard(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dash)
}

func (h *FinanceHandler) OperatorOverview(c *fiber.Ctx) error {
	ov, err := h.finance.OperatorOverview(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ov)
}

// AuditTrail lists audit entries, filtered by ?entity_id= and paged with
// ?limit= and ?offset=.
func (h *FinanceHandler) AuditTrail(c *fiber.Ctx) error {
	resp, err := h.audit.List(
		c.UserContext(),
		middleware.Actor(c),
		c.Query("entity_id"),
		c.QueryInt("limit", 50),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}
