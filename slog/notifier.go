package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingNotifier implements serpwatch.Notifier.
var _ serpwatch.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with logging.
type LoggingNotifier struct {
	next   serpwatch.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next serpwatch.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify delegates to the wrapped notifier and logs the operation.
func (n *LoggingNotifier) Notify(ctx context.Context, message string) (err error) {
	defer func(begin time.Time) {
		n.logger.Info("notify",
			"chars", len([]rune(message)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Notify(ctx, message)
}
