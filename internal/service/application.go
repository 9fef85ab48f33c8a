package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hostplan/hostplan/internal/keygen"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// Application service errors.
var (
	ErrOwnerNotFound     = errors.New("application owner not found")
	ErrApplicationExists = errors.New("application already exists")
)

// ApplicationService handles application creation.
type ApplicationService struct {
	store store.Store
	keys  *keygen.Generator
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(st store.Store, keys *keygen.Generator) *ApplicationService {
	if keys == nil {
		keys = keygen.Default()
	}
	return &ApplicationService{store: st, keys: keys}
}

// CreateApplicationInput defines input for creating an application.
type CreateApplicationInput struct {
	// ID is generated when empty.
	ID      string
	OwnerID string
	// Active defaults to true.
	Active *bool
}

// Create validates and stores a new application.
func (s *ApplicationService) Create(ctx context.Context, input CreateApplicationInput) (*model.Application, error) {
	id := input.ID
	if id == "" {
		var err error
		id, err = s.keys.New(model.ApplicationKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to generate application key: %w", err)
		}
	} else if !keygen.HasFormat(id, model.ApplicationKeyPrefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	now := time.Now().UTC()
	app := &model.Application{
		ID:        id,
		Active:    active,
		OwnerID:   input.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		switch {
		case errors.Is(err, store.ErrOwnerNotFound):
			return nil, ErrOwnerNotFound
		case errors.Is(err, store.ErrApplicationExists):
			return nil, ErrApplicationExists
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return app, nil
}
