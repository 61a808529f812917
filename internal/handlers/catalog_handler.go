package handlers

import (
	"encoding/json"
	"strings"

	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/middleware"
	"github.com/backdrop/placement-market/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create accepts multipart form data with a JSON "metadata" field and an
// optional "file" document, or a plain JSON body without a document.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req dto.ProjectRequest
	var doc *services.Document

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := json.Unmarshal([]byte(c.FormValue("metadata")), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid metadata JSON",
			})
		}
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return fail(c, err)
			}
			defer f.Close()
			doc = &services.Document{Name: fh.Filename, Body: f}
		}
	} else if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	project, err := h.projects.Create(c.UserContext(), middleware.Actor(c), &req, doc)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	projects, err := h.projects.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	project, err := h.projects.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	project, err := h.projects.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.projects.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type SlotHandler struct {
	slots *services.SlotService
}

func NewSlotHandler(slots *services.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

func (h *SlotHandler) List(c *fiber.Ctx) error {
	slots, err := h.slots.List(c.UserContext(), c.Query("project_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(slots)
}

func (h *SlotHandler) Get(c *fiber.Ctx) error {
	slot, err := h.slots.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(slot)
}

func (h *SlotHandler) Create(c *fiber.Ctx) error {
	var req dto.SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	slot, err := h.slots.Create(c.UserContext(), middleware.Actor(c), c.Query("project_id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

func (h *SlotHandler) Update(c *fiber.Ctx) error {
	var req dto.SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	slot, err := h.slots.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(slot)
}

func (h *SlotHandler) Delete(c *fiber.Ctx) error {
	if err := h.slots.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type SKUHandler struct {
	skus *services.SKUService
}

func NewSKUHandler(skus *services.SKUService) *SKUHandler {
	return &SKUHandler{skus: skus}
}

func (h *SKUHandler) List(c *fiber.Ctx) error {
	skus, err := h.skus.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(skus)
}

func (h *SKUHandler) Get(c *fiber.Ctx) error {
	sku, err := h.skus.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sku)
}

func (h *SKUHandler) Create(c *fiber.Ctx) error {
	var req dto.SKURequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	sku, err := h.skus.Create(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sku)
}

func (h *SKUHandler) Update(c *fiber.Ctx) error {
	var req dto.SKURequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	sku, err := h.skus.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sku)
}

func (h *SKUHandler) Delete(c *fiber.Ctx) error {
	if err := h.skus.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SKUHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A file field is required",
		})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	url, err := h.skus.UploadImage(middleware.Actor(c), fh.Filename, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.UploadResponse{URL: url})
}
