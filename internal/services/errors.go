package services

import (
	"errors"
	"fmt"

	"github.com/backdrop/placement-market/internal/access"
	"github.com/backdrop/placement-market/internal/bidflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = access.ErrForbidden
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = bidflow.ErrInvalidState
	ErrValidation         = errors.New("validation failed")
	ErrStorage            = errors.New("storage failure")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrConcurrentUpdate   = errors.New("bid was modified concurrently, retry the request")
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// parseID treats malformed identifiers as missing entities.
func parseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound(entity)
	}
	return id, nil
}

// lookupErr maps a gorm lookup failure to the error taxonomy.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return storageErr("load "+entity, err)
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
