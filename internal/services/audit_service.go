package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// recordAudit appends an audit entry using tx so it commits with the change
// it describes.
func recordAudit(tx *gorm.DB, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) error {
	raw := []byte("{}")
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = b
	}
	entry := models.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON(raw),
		CreatedAt:  time.Now().UTC(),
	}
	return tx.Create(&entry).Error
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// List returns audit entries newest first, optionally for one entity.
func (s *AuditService) List(ctx context.Context, actor *models.User, entityID string, limit, offset int) (*dto.AuditListResponse, error) {
	if err := access.Authorize(actor, access.AuditList, access.Facts{}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if entityID != "" {
		id, err := uuid.Parse(entityID)
		if err != nil {
			return &dto.AuditListResponse{Entries: []models.AuditLog{}, Limit: limit, Offset: offset}, nil
		}
		query = query.Where("entity_id = ?", id)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, storageErr("count audit entries", err)
	}

	entries := []models.AuditLog{}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, storageErr("list audit entries", err)
	}
	return &dto.AuditListResponse{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
