// Package tokenrecords provides the PostgreSQL-backed store for calendar
// grants. Uniqueness on (owner, provider) is enforced by the primary key.
package tokenrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mberzonis/carelink/internal/common"
	"github.com/mberzonis/carelink/internal/dbx"
	"github.com/mberzonis/carelink/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the grant for (owner, provider), or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, owner, provider string) (*models.TokenRecord, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, created_at, updated_at
		FROM token_records
		WHERE owner = $1 AND provider = $2
	`
	rec := &models.TokenRecord{Owner: owner, Provider: provider}
	err := r.db.QueryRowContext(ctx, query, owner, provider).
		Scan(&rec.AccessToken, &rec.RefreshToken, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// Put inserts or overwrites the grant for (owner, provider).
func (r *PostgresRepository) Put(ctx context.Context, rec *models.TokenRecord) error {
	query := `
		INSERT INTO token_records (owner, provider, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, provider) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query,
		rec.Owner, rec.Provider, rec.AccessToken, rec.RefreshToken, rec.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the grant for (owner, provider).
func (r *PostgresRepository) Delete(ctx context.Context, owner, provider string) error {
	query := `
		DELETE FROM token_records
		WHERE owner = $1 AND provider = $2
	`
	if _, err := r.db.ExecContext(ctx, query, owner, provider); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
