package cache

import (
	"context"
	"log/slog"

	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// AccountCache is the cache surface used by AccountStore.
type AccountCache interface {
	GetAccounts(ctx context.Context, ids []string) (map[string]*model.Account, error)
	SetAccounts(ctx context.Context, accounts []*model.Account) error
	DeleteAccount(ctx context.Context, id string) error
}

// AccountStore is a read-through account cache in front of a store.Store.
// Updates go to the store first and are then written through to the cache;
// the cache keeps whichever copy has the later UpdatedAt.
// Cache failures are logged and never fail a request.
type AccountStore struct {
	store.Store
	cache   AccountCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAccountStore wraps next with cache.
func NewAccountStore(next store.Store, cache AccountCache, recorder metrics.Recorder, logger *slog.Logger) *AccountStore {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountStore{
		Store:   next,
		cache:   cache,
		metrics: recorder,
		logger:  logger,
	}
}

// GetAccountsByIDs serves cached accounts and fetches the rest from the
// underlying store in a single query.
func (s *AccountStore) GetAccountsByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	// Step 1: Try cache
	hits, err := s.cache.GetAccounts(ctx, ids)
	if err != nil {
		s.logger.Warn("account cache read failed", slog.String("error", err.Error()))
		hits = nil
	}

	accounts := make([]*model.Account, 0, len(ids))
	misses := make([]string, 0, len(ids))
	for _, id := range ids {
		if account, ok := hits[id]; ok {
			accounts = append(accounts, account)
		} else {
			misses = append(misses, id)
		}
	}

	s.metrics.AddAccountCacheHits(len(accounts))
	s.metrics.AddAccountCacheMisses(len(misses))

	if len(misses) == 0 {
		return accounts, nil
	}

	// Step 2: DB lookup for misses
	fetched, err := s.Store.GetAccountsByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	// Step 3: Backfill cache
	if err := s.cache.SetAccounts(ctx, fetched); err != nil {
		s.logger.Warn("account cache backfill failed", slog.String("error", err.Error()))
	}

	return append(accounts, fetched...), nil
}

// UpdateAccount updates the account in the store and writes the committed
// record to cache. If the write fails the entry is evicted instead.
func (s *AccountStore) UpdateAccount(ctx context.Context, id string, fn func(*model.Account) error) (*model.Account, error) {
	account, err := s.Store.UpdateAccount(ctx, id, fn)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetAccounts(ctx, []*model.Account{account}); err != nil {
		s.logger.Warn("account cache write-through failed",
			slog.String("account_id", id),
			slog.String("error", err.Error()),
		)
		s.evict(ctx, id)
	}
	return account, nil
}

// DeleteAccount deletes the account in the store and evicts it from cache.
func (s *AccountStore) DeleteAccount(ctx context.Context, id string) error {
	if err := s.Store.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.evict(ctx, id)
	return nil
}

func (s *AccountStore) evict(ctx context.Context, id string) {
	if err := s.cache.DeleteAccount(ctx, id); err != nil {
		s.logger.Warn("account cache eviction failed",
			slog.String("account_id", id),
			slog.String("error", err.Error()),
		)
	}
}

var _ store.Store = (*AccountStore)(nil)
