// Package reminders provides a PostgreSQL-backed repository for medication
// reminders.
package reminders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mberzonis/carelink/internal/dbx"
	"github.com/mberzonis/carelink/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new reminder row.
func (r *PostgresRepository) Create(ctx context.Context, rem *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, owner, medication, dosage, due_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rem.ID, rem.Owner, rem.Medication, rem.Dosage, rem.DueAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForOwner returns the owner's reminders ordered by due time.
func (r *PostgresRepository) ListForOwner(ctx context.Context, owner string) ([]*models.Reminder, error) {
	query := `
		SELECT id, owner, medication, dosage, due_at, sent, created_at
		FROM reminders
		WHERE owner = $1
		ORDER BY due_at
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// ListDue returns unsent reminders due at or before now.
func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	query := `
		SELECT id, owner, medication, dosage, due_at, sent, created_at
		FROM reminders
		WHERE NOT sent AND due_at <= $1
		ORDER BY due_at
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent flags a reminder as delivered.
func (r *PostgresRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE reminders
		SET sent = TRUE
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]*models.Reminder, error) {
	var result []*models.Reminder
	for rows.Next() {
		rem := &models.Reminder{}
		if err := rows.Scan(&rem.ID, &rem.Owner, &rem.Medication, &rem.Dosage,
			&rem.DueAt, &rem.Sent, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
