package services

import (
	"context"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotService struct {
	db *gorm.DB
}

func NewSlotService(db *gorm.DB) *SlotService {
	return &SlotService{db: db}
}

// List returns all slots, or the slots of one project when projectID is set.
func (s *SlotService) List(ctx context.Context, projectID string) ([]models.Slot, error) {
	slots := []models.Slot{}
	query := s.db.WithContext(ctx).Order("created_at ASC")
	if projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			return slots, nil
		}
		query = query.Where("project_id = ?", id)
	}
	if err := query.Find(&slots).Error; err != nil {
		return nil, storageErr("list slots", err)
	}
	return slots, nil
}

func (s *SlotService) Get(ctx context.Context, rawID string) (*models.Slot, error) {
	id, err := parseID(rawID, "slot")
	if err != nil {
		return nil, err
	}
	var slot models.Slot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "slot")
	}
	return &slot, nil
}

// Create adds a slot under projectID. Only the project's creator may do so.
func (s *SlotService) Create(ctx context.Context, actor *models.User, projectID string, req *dto.SlotRequest) (*models.Slot, error) {
	if actor.Role != models.RoleCreator {
		return nil, access.Authorize(actor, access.SlotCreate, access.Facts{})
	}
	if projectID == "" {
		projectID = req.ProjectID
	}
	if projectID == "" {
		return nil, validationErr("project_id is required")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	pid, err := parseID(projectID, "project")
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", pid).Error; err != nil {
		return nil, lookupErr(err, "project")
	}
	if err := access.Authorize(actor, access.SlotCreate, access.Facts{OwnerID: project.CreatorID}); err != nil {
		return nil, err
	}

	slot := models.Slot{
		ID:        uuid.New(),
		ProjectID: project.ID,
		CreatorID: project.CreatorID,
	}
	applySlot(&slot, req)

	if err := s.db.WithContext(ctx).Create(&slot).Error; err != nil {
		return nil, storageErr("create slot", err)
	}
	return &slot, nil
}

func (s *SlotService) Update(ctx context.Context, actor *models.User, rawID string, req *dto.SlotRequest) (*models.Slot, error) {
	slot, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.SlotUpdate, access.Facts{OwnerID: slot.CreatorID}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	applySlot(slot, req)
	if err := s.db.WithContext(ctx).Save(slot).Error; err != nil {
		return nil, storageErr("update slot", err)
	}
	return s.Get(ctx, rawID)
}

func (s *SlotService) Delete(ctx context.Context, actor *models.User, rawID string) error {
	slot, err := s.Get(ctx, rawID)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.SlotDelete, access.Facts{OwnerID: slot.CreatorID}); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Slot{}, "id = ?", slot.ID).Error; err != nil {
		return storageErr("delete slot", err)
	}
	return nil
}

func applySlot(slot *models.Slot, req *dto.SlotRequest) {
	slot.SceneRef = req.SceneRef
	slot.Description = req.Description
	slot.Constraints = req.Constraints
	slot.PricingFloor = req.PricingFloor
	slot.Modality = req.Modality

	slot.Status = req.Status
	if slot.Status == "" {
		slot.Status = models.SlotAvailable
	}
	slot.Visibility = req.Visibility
	if slot.Visibility == "" {
		slot.Visibility = models.VisibilityPublic
	}
}
