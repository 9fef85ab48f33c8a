package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// Common errors for application repository operations.
var (
	ErrApplicationExists = store.ErrApplicationExists
	ErrOwnerNotFound     = store.ErrOwnerNotFound
)

const applicationColumns = `id, active, owner_id, created_at, updated_at`

// CreateApplication inserts a new application into the database.
func (r *Repository) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (id, active, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.Active,
		app.OwnerID,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return ErrApplicationExists
		case isPgError(err, pgForeignKeyViolation):
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// ListApplications retrieves every application ordered by creation time.
func (r *Repository) ListApplications(ctx context.Context) ([]*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return collectApplications(rows)
}

// GetApplicationsByIDs retrieves the applications matching ids in one query.
func (r *Repository) GetApplicationsByIDs(ctx context.Context, ids []string) ([]*model.Application, error) {
	if len(ids) == 0 {
		return []*model.Application{}, nil
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications by IDs: %w", err)
	}
	return collectApplications(rows)
}

// GetApplicationsByOwnerIDs retrieves the applications of all given owners in
// one query. Callers partition the result by OwnerID.
func (r *Repository) GetApplicationsByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*model.Application, error) {
	if len(ownerIDs) == 0 {
		return []*model.Application{}, nil
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE owner_id = ANY($1) ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications by owner IDs: %w", err)
	}
	return collectApplications(rows)
}

// scanApplication scans a single row into an Application model.
func scanApplication(row pgx.Row) (*model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID,
		&app.Active,
		&app.OwnerID,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func collectApplications(rows pgx.Rows) ([]*model.Application, error) {
	defer rows.Close()

	apps := []*model.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}
