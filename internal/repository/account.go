package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// Common errors for account repository operations.
var (
	ErrAccountNotFound = store.ErrAccountNotFound
	ErrUsernameExists  = store.ErrUsernameExists
)

const accountColumns = `id, username, plan, created_at, updated_at`

// CreateAccount inserts a new account into the database.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, username, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Plan,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// ListAccounts retrieves every account ordered by creation time.
func (r *Repository) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collectAccounts(rows)
}

// GetAccountsByIDs retrieves the accounts matching ids in one query.
// Missing ids are skipped; result order is unspecified.
func (r *Repository) GetAccountsByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by IDs: %w", err)
	}
	return collectAccounts(rows)
}

// UpdateAccount loads the account under a row lock, applies fn and writes
// the result in the same transaction. If fn returns an error nothing is
// written and the error is returned unchanged.
func (r *Repository) UpdateAccount(ctx context.Context, id string, fn func(*model.Account) error) (*model.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	if err := fn(account); err != nil {
		return nil, err
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	update := `
		UPDATE accounts
		SET username = $2, plan = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, update, account.ID, account.Username, account.Plan).Scan(&account.UpdatedAt); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account update: %w", err)
	}

	return account, nil
}

// DeleteAccount removes an account. Its applications are removed by the
// ON DELETE CASCADE constraint.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// scanAccount scans a single row into an Account model.
func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Plan,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*model.Account, error) {
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

var _ store.Store = (*Repository)(nil)
