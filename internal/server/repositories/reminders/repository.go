// Package reminders declares the repository contract for scheduled
// medication reminders.
package reminders

import (
	"context"
	"time"

	"github.com/mberzonis/carelink/internal/server/models"
)

// Repository defines operations on stored reminders.
type Repository interface {
	// Create stores a new reminder.
	Create(ctx context.Context, rem *models.Reminder) error

	// ListForOwner returns the owner's reminders, soonest first.
	ListForOwner(ctx context.Context, owner string) ([]*models.Reminder, error)

	// ListDue returns unsent reminders whose due time is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error)

	// MarkSent flags a reminder as delivered so it is not dispatched again.
	MarkSent(ctx context.Context, id string) error
}
