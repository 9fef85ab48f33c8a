package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hostplan/hostplan/internal/model"
)

// Cache key prefixes and TTLs.
const (
	accountKeyPrefix = "account:"

	// DefaultAccountTTL is the TTL for cached account data.
	DefaultAccountTTL = 10 * time.Minute
)

// setIfNewer writes an account hash unless the cached copy has the same or a
// later updated_at. Timestamps are decimal Unix nanoseconds, so a longer
// string is a later time.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'updated_at')
if cur and (#cur > #ARGV[4] or (#cur == #ARGV[4] and cur >= ARGV[4])) then
  return 0
end
redis.call('HSET', KEYS[1], 'username', ARGV[1], 'plan', ARGV[2], 'created_at', ARGV[3], 'updated_at', ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// Accounts stores account records as Redis hashes.
type Accounts struct {
	client *redis.Client
	ttl    time.Duration
}

// Accounts returns the account cache backed by c.
// A non-positive ttl selects DefaultAccountTTL.
func (c *Cache) Accounts(ttl time.Duration) *Accounts {
	if ttl <= 0 {
		ttl = DefaultAccountTTL
	}
	return &Accounts{client: c.client, ttl: ttl}
}

// GetAccounts retrieves cached accounts in one pipelined round trip.
// Missing ids are absent from the result.
func (a *Accounts) GetAccounts(ctx context.Context, ids []string) (map[string]*model.Account, error) {
	found := make(map[string]*model.Account, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	pipe := a.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, accountKeyPrefix+id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	for i, cmd := range cmds {
		result := cmd.Val()
		if len(result) == 0 {
			continue
		}

		cached := &model.CachedAccount{
			Username:  result["username"],
			Plan:      result["plan"],
			CreatedAt: result["created_at"],
			UpdatedAt: result["updated_at"],
		}
		found[ids[i]] = cached.ToAccount(ids[i])
	}

	return found, nil
}

// SetAccounts stores accounts in cache. An entry is only replaced by an
// account with a later UpdatedAt, so a slow reader cannot overwrite the
// result of a newer write.
func (a *Accounts) SetAccounts(ctx context.Context, accounts []*model.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	ttl := a.ttl.Milliseconds()
	pipe := a.client.Pipeline()
	for _, account := range accounts {
		cached := account.ToCachedAccount()
		setIfNewer.Eval(ctx, pipe, []string{accountKeyPrefix + account.ID},
			cached.Username,
			cached.Plan,
			cached.CreatedAt,
			cached.UpdatedAt,
			ttl,
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache accounts: %w", err)
	}

	return nil
}

// DeleteAccount removes an account from cache.
func (a *Accounts) DeleteAccount(ctx context.Context, id string) error {
	if err := a.client.Del(ctx, accountKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete account from cache: %w", err)
	}
	return nil
}
