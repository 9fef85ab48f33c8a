// Package model defines domain entities for the application.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key prefixes for generated identity keys.
const (
	AccountKeyPrefix     = "u_"
	ApplicationKeyPrefix = "app_"
)

// ErrValidation is wrapped by every entity validation failure.
var ErrValidation = errors.New("validation error")

// Plan represents an account's billing plan.
type Plan string

const (
	PlanHobby Plan = "HOBBY"
	PlanPro   Plan = "PRO"
)

// IsValid checks if the plan is one of the known plans.
func (p Plan) IsValid() bool {
	return p == PlanHobby || p == PlanPro
}

// Account represents a user account that owns applications.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeKind implements Node.
func (a *Account) NodeKind() NodeKind { return KindAccount }

// NodeKey implements Node.
func (a *Account) NodeKey() string { return a.ID }

// Validate checks the account invariants before it is written.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrValidation)
	}
	if !a.Plan.IsValid() {
		return fmt.Errorf("%w: invalid plan %q", ErrValidation, a.Plan)
	}
	return nil
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Username, a.ID)
}

// CachedAccount represents account data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedAccount struct {
	Username  string `redis:"username"`
	Plan      string `redis:"plan"`
	CreatedAt string `redis:"created_at"` // Unix nanoseconds
	UpdatedAt string `redis:"updated_at"` // Unix nanoseconds
}

// ToAccount converts CachedAccount to the Account domain model.
func (c *CachedAccount) ToAccount(id string) *Account {
	account := &Account{
		ID:       id,
		Username: c.Username,
		Plan:     Plan(c.Plan),
	}

	if ts, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		account.CreatedAt = time.Unix(0, ts).UTC()
	}
	if ts, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil {
		account.UpdatedAt = time.Unix(0, ts).UTC()
	}

	return account
}

// ToCachedAccount converts Account to its cached form.
func (a *Account) ToCachedAccount() *CachedAccount {
	return &CachedAccount{
		Username:  a.Username,
		Plan:      string(a.Plan),
		CreatedAt: strconv.FormatInt(a.CreatedAt.UnixNano(), 10),
		UpdatedAt: strconv.FormatInt(a.UpdatedAt.UnixNano(), 10),
	}
}
