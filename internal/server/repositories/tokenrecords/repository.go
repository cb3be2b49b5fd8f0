// Package tokenrecords declares the repository contract for the durable
// calendar-grant store. At most one record exists per (owner, provider);
// Put overwrites, never duplicates.
package tokenrecords

import (
	"context"

	"github.com/mberzonis/carelink/internal/server/models"
)

// Repository defines operations on stored TokenRecords.
type Repository interface {
	// Get returns the record for (owner, provider), or common.ErrorNotFound
	// when no grant is held.
	Get(ctx context.Context, owner, provider string) (*models.TokenRecord, error)

	// Put inserts the record or overwrites the existing one for the same
	// (owner, provider) pair.
	Put(ctx context.Context, rec *models.TokenRecord) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, owner, provider string) error
}
