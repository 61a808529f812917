package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	files *storage.LocalStore
}

func NewProjectService(db *gorm.DB, files *storage.LocalStore) *ProjectService {
	return &ProjectService{db: db, files: files}
}

// Document is an upload attached to a new project.
type Document struct {
	Name string
	Body io.Reader
}

func demographicsOf(in dto.DemographicsInput) datatypes.JSONType[models.Demographics] {
	return datatypes.NewJSONType(models.Demographics{
		AgeStart: in.AgeStart,
		AgeEnd:   in.AgeEnd,
		Gender:   in.Gender,
	})
}

func (s *ProjectService) Create(ctx context.Context, actor *models.User, req *dto.ProjectRequest, doc *Document) (*models.Project, error) {
	if err := access.Authorize(actor, access.ProjectCreate, access.Facts{}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	project := models.Project{
		ID:               uuid.New(),
		CreatorID:        actor.ID,
		Title:            req.Title,
		Genre:            req.Genre,
		BudgetTarget:     req.BudgetTarget,
		ProductionWindow: req.ProductionWindow,
		Demographics:     demographicsOf(req.Demographics),
	}

	if doc != nil {
		stored, err := s.files.Save("documents", doc.Name, doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: save document: %v", ErrStorage, err)
		}
		project.DocLink = stored.URL
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, storageErr("create project", err)
	}
	slog.Info("project created", "project_id", project.ID.String(), "user_id", actor.ID.String())
	return &project, nil
}

// List returns every project for operators and buyers (discovery) and the
// caller's own projects for creators.
func (s *ProjectService) List(ctx context.Context, actor *models.User) ([]models.Project, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if actor.Role == models.RoleCreator {
		query = query.Where("creator_id = ?", actor.ID)
	}
	projects := []models.Project{}
	if err := query.Find(&projects).Error; err != nil {
		return nil, storageErr("list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) load(ctx context.Context, rawID string) (*models.Project, error) {
	id, err := parseID(rawID, "project")
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "project")
	}
	return &project, nil
}

func (s *ProjectService) Get(ctx context.Context, actor *models.User, rawID string) (*models.Project, error) {
	project, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ProjectRead, access.Facts{OwnerID: project.CreatorID}); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, actor *models.User, rawID string, req *dto.ProjectRequest) (*models.Project, error) {
	project, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ProjectUpdate, access.Facts{OwnerID: project.CreatorID}); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	project.Title = req.Title
	project.Genre = req.Genre
	project.BudgetTarget = req.BudgetTarget
	project.ProductionWindow = req.ProductionWindow
	project.Demographics = demographicsOf(req.Demographics)

	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, storageErr("update project", err)
	}
	return s.load(ctx, rawID)
}

// Delete removes the project and every slot under it in one transaction.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, rawID string) error {
	project, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.ProjectDelete, access.Facts{OwnerID: project.CreatorID}); err != nil {
		return err
	}

	var removedSlots int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("project_id = ?", project.ID).Delete(&models.Slot{})
		if res.Error != nil {
			return res.Error
		}
		removedSlots = res.RowsAffected
		if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
			return err
		}
		return recordAudit(tx, actor.ID, "project.deleted", "project", project.ID, map[string]interface{}{
			"title":         project.Title,
			"slots_removed": removedSlots,
		})
	})
	if err != nil {
		return storageErr("delete project", err)
	}

	slog.Info("project deleted", "project_id", project.ID.String(), "slots_removed", removedSlots)
	return nil
}
