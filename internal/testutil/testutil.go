package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates all tables from the embedded migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, direction := range []string{"down", "up"} {
		names, err := migrations.Files(direction)
		if err != nil {
			return err
		}
		for _, name := range names {
			sql, err := fs.ReadFile(migrations.FS, name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			if _, err := pool.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Uint64

// UniqueKey generates a unique, well-formed record key for tests.
func UniqueKey(prefix string) string {
	return fmt.Sprintf("%s%010d", prefix, seq.Add(1)%10_000_000_000)
}

// NewTestAccount creates a test account with sensible defaults.
func NewTestAccount(t testing.TB, username string, plan model.Plan) *model.Account {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Account{
		ID:        UniqueKey(model.AccountKeyPrefix),
		Username:  username,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestApplication creates an active test application owned by ownerID.
func NewTestApplication(t testing.TB, ownerID string) *model.Application {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Application{
		ID:        UniqueKey(model.ApplicationKeyPrefix),
		Active:    true,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
