package repomanager

import (
	"context"
	"database/sql"

	"github.com/mberzonis/carelink/internal/dbx"
	"github.com/mberzonis/carelink/internal/server/repositories/reminders"
	"github.com/mberzonis/carelink/internal/server/repositories/tokenrecords"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run them against either the pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	TokenRecords(db dbx.DBTX) tokenrecords.Repository
	Reminders(db dbx.DBTX) reminders.Repository
}
