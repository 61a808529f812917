package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/backdrop/placement-market/internal/database"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/services"
	"github.com/google/uuid"
)

func TestRunProvisionsAndResetsOperators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", "operator-test-secret")

	if err := run("create", "ops@example.com", "Ops", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := run("reset-password", "ops@example.com", "", "password456"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	creator := models.User{ID: uuid.New(), Email: "creator@example.com", Name: "C", Password: "x", Role: models.RoleCreator}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("seed creator: %v", err)
	}
	database.Close(db)

	err = run("reset-password", "creator@example.com", "", "password456")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("reset of a non-operator: expected ErrNotFound, got %v", err)
	}
}
