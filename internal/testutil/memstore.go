package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// MemoryStore is an in-memory store.Store that records every call.
type MemoryStore struct {
	mu           sync.Mutex
	accounts     map[string]*model.Account
	applications map[string]*model.Application
	order        []string
	calls        map[string][][]string

	// Err, when set, is returned by every read and write.
	Err error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]*model.Account),
		applications: make(map[string]*model.Application),
		calls:        make(map[string][][]string),
	}
}

// Calls returns the argument lists of every call to method.
func (s *MemoryStore) Calls(method string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls[method])
}

// CallCount returns the number of calls to method.
func (s *MemoryStore) CallCount(method string) int {
	return len(s.Calls(method))
}

// ResetCalls forgets recorded calls.
func (s *MemoryStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string][][]string)
}

// Account returns a copy of the stored account, or nil.
func (s *MemoryStore) Account(id string) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		c := *a
		return &c
	}
	return nil
}

func (s *MemoryStore) record(method string, args []string) error {
	s.calls[method] = append(s.calls[method], slices.Clone(args))
	return s.Err
}

// ListAccounts implements store.Store.
func (s *MemoryStore) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListAccounts", nil); err != nil {
		return nil, err
	}

	out := []*model.Account{}
	for _, id := range s.order {
		if a, ok := s.accounts[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// ListApplications implements store.Store.
func (s *MemoryStore) ListApplications(ctx context.Context) ([]*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListApplications", nil); err != nil {
		return nil, err
	}

	out := []*model.Application{}
	for _, id := range s.order {
		if a, ok := s.applications[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// GetAccountsByIDs implements store.Store.
func (s *MemoryStore) GetAccountsByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetAccountsByIDs", ids); err != nil {
		return nil, err
	}

	out := []*model.Account{}
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// GetApplicationsByIDs implements store.Store.
func (s *MemoryStore) GetApplicationsByIDs(ctx context.Context, ids []string) ([]*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetApplicationsByIDs", ids); err != nil {
		return nil, err
	}

	out := []*model.Application{}
	for _, id := range ids {
		if a, ok := s.applications[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// GetApplicationsByOwnerIDs implements store.Store.
func (s *MemoryStore) GetApplicationsByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetApplicationsByOwnerIDs", ownerIDs); err != nil {
		return nil, err
	}

	out := []*model.Application{}
	for _, id := range s.order {
		if a, ok := s.applications[id]; ok && slices.Contains(ownerIDs, a.OwnerID) {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// CreateAccount implements store.Store.
func (s *MemoryStore) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateAccount", []string{account.ID}); err != nil {
		return err
	}

	for _, a := range s.accounts {
		if a.Username == account.Username {
			return store.ErrUsernameExists
		}
	}

	c := *account
	s.accounts[account.ID] = &c
	s.order = append(s.order, account.ID)
	return nil
}

// CreateApplication implements store.Store.
func (s *MemoryStore) CreateApplication(ctx context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateApplication", []string{app.ID}); err != nil {
		return err
	}

	if _, ok := s.applications[app.ID]; ok {
		return store.ErrApplicationExists
	}
	if _, ok := s.accounts[app.OwnerID]; !ok {
		return store.ErrOwnerNotFound
	}

	c := *app
	s.applications[app.ID] = &c
	s.order = append(s.order, app.ID)
	return nil
}

// UpdateAccount implements store.Store.
func (s *MemoryStore) UpdateAccount(ctx context.Context, id string, fn func(*model.Account) error) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateAccount", []string{id}); err != nil {
		return nil, err
	}

	current, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}

	working := *current
	if err := fn(&working); err != nil {
		return nil, err
	}
	if err := working.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Microsecond)
	}
	working.UpdatedAt = now

	s.accounts[id] = &working
	out := working
	return &out, nil
}

// DeleteAccount implements store.Store.
func (s *MemoryStore) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DeleteAccount", []string{id}); err != nil {
		return err
	}

	if _, ok := s.accounts[id]; !ok {
		return store.ErrAccountNotFound
	}
	delete(s.accounts, id)
	for appID, app := range s.applications {
		if app.OwnerID == id {
			delete(s.applications, appID)
		}
	}
	return nil
}

var _ store.Store = (*MemoryStore)(nil)
