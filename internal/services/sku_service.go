package services

import (
	"context"
	"fmt"
	"io"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SKUService struct {
	db    *gorm.DB
	files *storage.LocalStore
}

func NewSKUService(db *gorm.DB, files *storage.LocalStore) *SKUService {
	return &SKUService{db: db, files: files}
}

// List returns the merchant's own catalog.
func (s *SKUService) List(ctx context.Context, actor *models.User) ([]models.SKU, error) {
	if err := access.Authorize(actor, access.SKUList, access.Facts{}); err != nil {
		return nil, err
	}
	skus := []models.SKU{}
	if err := s.db.WithContext(ctx).Where("merchant_id = ?", actor.ID).Order("created_at ASC").Find(&skus).Error; err != nil {
		return nil, storageErr("list skus", err)
	}
	return skus, nil
}

func (s *SKUService) load(ctx context.Context, rawID string) (*models.SKU, error) {
	id, err := parseID(rawID, "sku")
	if err != nil {
		return nil, err
	}
	var sku models.SKU
	if err := s.db.WithContext(ctx).First(&sku, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "sku")
	}
	return &sku, nil
}

func (s *SKUService) Get(ctx context.Context, actor *models.User, rawID string) (*models.SKU, error) {
	sku, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.SKURead, access.Facts{OwnerID: sku.MerchantID}); err != nil {
		return nil, err
	}
	return sku, nil
}

func (s *SKUService) Create(ctx context.Context, actor *models.User, req *dto.SKURequest) (*models.SKU, error) {
	if err := access.Authorize(actor, access.SKUCreate, access.Facts{}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sku := models.SKU{ID: uuid.New(), MerchantID: actor.ID}
	applySKU(&sku, req)
	if err := s.db.WithContext(ctx).Create(&sku).Error; err != nil {
		return nil, storageErr("create sku", err)
	}
	return &sku, nil
}

func (s *SKUService) Update(ctx context.Context, actor *models.User, rawID string, req *dto.SKURequest) (*models.SKU, error) {
	sku, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.SKUUpdate, access.Facts{OwnerID: sku.MerchantID}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	applySKU(sku, req)
	if err := s.db.WithContext(ctx).Save(sku).Error; err != nil {
		return nil, storageErr("update sku", err)
	}
	return s.load(ctx, rawID)
}

func (s *SKUService) Delete(ctx context.Context, actor *models.User, rawID string) error {
	sku, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.SKUDelete, access.Facts{OwnerID: sku.MerchantID}); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.SKU{}, "id = ?", sku.ID).Error; err != nil {
		return storageErr("delete sku", err)
	}
	return nil
}

// UploadImage stores a product image and returns its public URL. The URL is
// attached to a SKU by a later create or update.
func (s *SKUService) UploadImage(actor *models.User, name string, body io.Reader) (string, error) {
	if err := access.Authorize(actor, access.SKUUpload, access.Facts{}); err != nil {
		return "", err
	}
	stored, err := s.files.Save("images", name, body)
	if err != nil {
		return "", fmt.Errorf("%w: save image: %v", ErrStorage, err)
	}
	return stored.URL, nil
}

func applySKU(sku *models.SKU, req *dto.SKURequest) {
	sku.Title = req.Title
	sku.Price = req.Price
	sku.Margin = req.Margin
	sku.ImageURL = req.ImageURL
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	sku.Tags = datatypes.JSONSlice[string](tags)
}
