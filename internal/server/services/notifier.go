package services

import (
	"context"

	"github.com/mberzonis/carelink/internal/logging"
)

// Notifier is the delivery sink for reminder messages. The real sink
// (push/SMS gateway) lives outside this service; delivery here is
// fire-and-forget from the scheduler's point of view.
type Notifier interface {
	Notify(ctx context.Context, owner, message string) error
}

// LogNotifier writes notifications to the structured log. Used as the
// default sink and in development.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, owner, message string) error {
	n.logger.Info(ctx, "reminder notification", "owner", owner, "message", message)
	return nil
}
