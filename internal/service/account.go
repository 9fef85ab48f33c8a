// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hostplan/hostplan/internal/keygen"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/node"
	"github.com/hostplan/hostplan/internal/store"
)

// Service errors.
var (
	ErrWrongNodeType   = errors.New("identifier does not refer to an account")
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidKey      = errors.New("invalid record key")
)

// AccountService handles account creation and plan changes.
type AccountService struct {
	store   store.Store
	nodes   *node.Registry
	keys    *keygen.Generator
	metrics metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(st store.Store, keys *keygen.Generator, recorder metrics.Recorder) *AccountService {
	if keys == nil {
		keys = keygen.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		store:   st,
		nodes:   node.NewRegistry(),
		keys:    keys,
		metrics: recorder,
	}
}

// CreateAccountInput defines input for creating an account.
type CreateAccountInput struct {
	// ID is generated when empty.
	ID       string
	Username string
	// Plan defaults to HOBBY.
	Plan model.Plan
}

// Create validates and stores a new account.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*model.Account, error) {
	id := input.ID
	if id == "" {
		var err error
		id, err = s.keys.New(model.AccountKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account key: %w", err)
		}
	} else if !keygen.HasFormat(id, model.AccountKeyPrefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	plan := input.Plan
	if plan == "" {
		plan = model.PlanHobby
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:        id,
		Username:  input.Username,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Upgrade moves the account behind the opaque id from HOBBY to PRO.
func (s *AccountService) Upgrade(ctx context.Context, id string) (*model.Account, error) {
	return s.transition(ctx, id, model.TransitionUpgrade)
}

// Downgrade moves the account behind the opaque id from PRO to HOBBY.
func (s *AccountService) Downgrade(ctx context.Context, id string) (*model.Account, error) {
	return s.transition(ctx, id, model.TransitionDowngrade)
}

func (s *AccountService) transition(ctx context.Context, id string, t model.Transition) (*model.Account, error) {
	account, err := s.applyTransition(ctx, id, t)
	if err != nil {
		s.metrics.IncPlanTransition(string(t), "failed")
		return nil, err
	}
	s.metrics.IncPlanTransition(string(t), "success")
	return account, nil
}

func (s *AccountService) applyTransition(ctx context.Context, id string, t model.Transition) (*model.Account, error) {
	key, err := s.accountKey(id)
	if err != nil {
		return nil, err
	}

	// The plan check runs inside the store's locked update, so concurrent
	// transitions of one account are serialized.
	account, err := s.store.UpdateAccount(ctx, key, func(a *model.Account) error {
		next, err := a.Plan.Apply(t)
		if err != nil {
			return err
		}
		a.Plan = next
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return account, nil
}

// accountKey decodes id and checks that it names an account node.
// Forged keys are rejected with the same errors node lookups report.
func (s *AccountService) accountKey(id string) (string, error) {
	typ, key, err := s.nodes.Parse(id)
	if err != nil {
		if errors.Is(err, node.ErrUnknownNodeType) {
			return "", fmt.Errorf("%w: %v", ErrWrongNodeType, err)
		}
		return "", err
	}

	if typ.Kind != model.KindAccount {
		return "", fmt.Errorf("%w: %q", ErrWrongNodeType, typ.Name)
	}
	return key, nil
}
