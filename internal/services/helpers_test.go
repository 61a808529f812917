package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/backdrop/placement-market/internal/database"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/events"
	"github.com/backdrop/placement-market/internal/metrics"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BidEvent
	err    error
}

func (p *recordingPublisher) PublishBidEvent(_ context.Context, e events.BidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	tokens    *TokenService
	auth      *AuthService
	projects  *ProjectService
	slots     *SlotService
	skus      *SKUService
	bids      *BidService
	finance   *FinanceService
	audit     *AuditService
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	files, err := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	tokens := NewTokenService("test-secret", time.Hour)
	pub := &recordingPublisher{}
	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		tokens:    tokens,
		auth:      NewAuthService(db, tokens),
		projects:  NewProjectService(db, files),
		slots:     NewSlotService(db),
		skus:      NewSKUService(db, files),
		bids:      NewBidService(db, pub, metrics.New(prometheus.NewRegistry()), 3),
		finance:   NewFinanceService(db, 0.1),
		audit:     NewAuditService(db),
		publisher: pub,
	}
}

func (e *testEnv) user(t *testing.T, role models.Role) *models.User {
	t.Helper()
	email := fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8])
	if role == models.RoleOperator {
		u, err := e.auth.CreateOperator(e.ctx, email, "Operator", "password123")
		if err != nil {
			t.Fatalf("create operator: %v", err)
		}
		return u
	}
	resp, err := e.auth.Signup(e.ctx, &dto.SignupRequest{
		Email:    email,
		Name:     string(role),
		Password: "password123",
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("signup %s: %v", role, err)
	}
	return resp.User
}

func (e *testEnv) project(t *testing.T, creator *models.User, budget float64) *models.Project {
	t.Helper()
	p, err := e.projects.Create(e.ctx, creator, &dto.ProjectRequest{
		Title:        "Night Shift",
		Genre:        "Drama",
		BudgetTarget: budget,
		Demographics: dto.DemographicsInput{AgeStart: 18, AgeEnd: 34, Gender: "All"},
	}, nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (e *testEnv) slot(t *testing.T, creator *models.User, project *models.Project) *models.Slot {
	t.Helper()
	s, err := e.slots.Create(e.ctx, creator, project.ID.String(), &dto.SlotRequest{
		SceneRef:     "Scene 12 - diner counter",
		PricingFloor: 250,
		Modality:     models.ModalityPrivateAuction,
	})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return s
}

func (e *testEnv) bid(t *testing.T, buyer *models.User, slot *models.Slot, terms string) *models.Bid {
	t.Helper()
	b, err := e.bids.Create(e.ctx, buyer, &dto.CreateBidRequest{
		SlotID:       slot.ID.String(),
		Objective:    models.ObjectiveReach,
		PricingModel: models.PricingFixed,
		AmountTerms:  terms,
		FlightWindow: "Q3",
	})
	if err != nil {
		t.Fatalf("create bid: %v", err)
	}
	return b
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
