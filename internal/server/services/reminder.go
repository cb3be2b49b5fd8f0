package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mberzonis/carelink/internal/logging"
	"github.com/mberzonis/carelink/internal/server/models"
	"github.com/mberzonis/carelink/internal/server/repositories/repomanager"
)

// ReminderService stores medication reminders and dispatches the due ones to
// a Notifier on a fixed interval. There is no unbounded background work:
// one poll per tick, stopped by cancelling the context passed to Run.
type ReminderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    Notifier
	logger      logging.Logger
	interval    time.Duration

	// now is a seam for tests.
	now func() time.Time
}

// NewReminderService constructs the service. interval is how often due
// reminders are polled.
func NewReminderService(db *sql.DB, m repomanager.RepositoryManager, notifier Notifier, logger logging.Logger, interval time.Duration) *ReminderService {
	return &ReminderService{
		db:          db,
		repomanager: m,
		notifier:    notifier,
		logger:      logger.With("module", "reminders"),
		interval:    interval,
		now:         time.Now,
	}
}

// Create stores a new reminder for the owner.
func (s *ReminderService) Create(ctx context.Context, owner, medication, dosage string, dueAt time.Time) (*models.Reminder, error) {
	rem := &models.Reminder{
		ID:         uuid.New().String(),
		Owner:      owner,
		Medication: medication,
		Dosage:     dosage,
		DueAt:      dueAt,
	}
	repo := s.repomanager.Reminders(s.db)
	if err := repo.Create(ctx, rem); err != nil {
		return nil, fmt.Errorf("creating reminder: %w", err)
	}
	return rem, nil
}

// ListForOwner returns the owner's reminders, soonest first.
func (s *ReminderService) ListForOwner(ctx context.Context, owner string) ([]*models.Reminder, error) {
	repo := s.repomanager.Reminders(s.db)
	return repo.ListForOwner(ctx, owner)
}

// Run polls for due reminders until ctx is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "reminder loop started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "reminder loop stopped")
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

// dispatchDue delivers every due, unsent reminder. A failed delivery is
// logged and left unsent, so the next tick retries it.
func (s *ReminderService) dispatchDue(ctx context.Context) {
	repo := s.repomanager.Reminders(s.db)

	due, err := repo.ListDue(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "listing due reminders", "error", err.Error())
		return
	}

	for _, rem := range due {
		msg := fmt.Sprintf("Time to take %s (%s)", rem.Medication, rem.Dosage)
		if err := s.notifier.Notify(ctx, rem.Owner, msg); err != nil {
			s.logger.Warn(ctx, "reminder delivery failed, will retry",
				"reminder", rem.ID, "error", err.Error())
			continue
		}
		if err := repo.MarkSent(ctx, rem.ID); err != nil {
			s.logger.Error(ctx, "marking reminder sent", "reminder", rem.ID, "error", err.Error())
		}
	}
}
