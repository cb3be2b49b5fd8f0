// Package repomanager provides the concrete RepositoryManager for
// PostgreSQL, wiring repository constructors and schema migrations (goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mberzonis/carelink/internal/dbx"
	"github.com/mberzonis/carelink/internal/server/migrations"
	"github.com/mberzonis/carelink/internal/server/repositories/reminders"
	"github.com/mberzonis/carelink/internal/server/repositories/tokenrecords"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and exposes
// a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// TokenRecords returns a tokenrecords.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TokenRecords(db dbx.DBTX) tokenrecords.Repository {
	return tokenrecords.NewPostgresRepository(db)
}

// Reminders returns a reminders.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Reminders(db dbx.DBTX) reminders.Repository {
	return reminders.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations points goose at the embedded migrations and applies them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
