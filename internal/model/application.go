package model

import (
	"fmt"
	"strings"
	"time"
)

// Application represents a deployed application owned by exactly one account.
// Deleting the owner removes its applications.
type Application struct {
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeKind implements Node.
func (a *Application) NodeKind() NodeKind { return KindApplication }

// NodeKey implements Node.
func (a *Application) NodeKey() string { return a.ID }

// Validate checks the application invariants before it is written.
func (a *Application) Validate() error {
	if strings.TrimSpace(a.OwnerID) == "" {
		return fmt.Errorf("%w: application must have an owner", ErrValidation)
	}
	return nil
}

func (a *Application) String() string {
	return fmt.Sprintf("App %s (Owner: %s)", a.ID, a.OwnerID)
}
