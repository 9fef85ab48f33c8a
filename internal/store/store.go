// Package store declares the persistence operations the API depends on.
// The PostgreSQL repository implements Store; the Redis account cache wraps it.
package store

import (
	"context"
	"errors"

	"github.com/hostplan/hostplan/internal/model"
)

// Errors returned by Store implementations.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrUsernameExists    = errors.New("username already exists")
	ErrApplicationExists = errors.New("application already exists")
	ErrOwnerNotFound     = errors.New("application owner not found")
)

// Store is the persistent record store.
//
// Bulk getters return only the records that exist, in unspecified order;
// each call is a single round trip.
type Store interface {
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	ListApplications(ctx context.Context) ([]*model.Application, error)

	GetAccountsByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
	GetApplicationsByIDs(ctx context.Context, ids []string) ([]*model.Application, error)
	GetApplicationsByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*model.Application, error)

	CreateAccount(ctx context.Context, account *model.Account) error
	CreateApplication(ctx context.Context, app *model.Application) error

	// UpdateAccount runs fn and persists its changes atomically with respect
	// to other updates of the same account. UpdatedAt is set by the store.
	// If fn fails nothing is written.
	UpdateAccount(ctx context.Context, id string, fn func(*model.Account) error) (*model.Account, error)

	// DeleteAccount removes the account and its applications.
	DeleteAccount(ctx context.Context, id string) error
}
