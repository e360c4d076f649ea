package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingGapAnalyzer implements serpwatch.GapAnalyzer.
var _ serpwatch.GapAnalyzer = (*LoggingGapAnalyzer)(nil)

// LoggingGapAnalyzer wraps a GapAnalyzer with logging.
type LoggingGapAnalyzer struct {
	next   serpwatch.GapAnalyzer
	logger *slog.Logger
}

// NewLoggingGapAnalyzer creates a new LoggingGapAnalyzer.
func NewLoggingGapAnalyzer(next serpwatch.GapAnalyzer, logger *slog.Logger) *LoggingGapAnalyzer {
	return &LoggingGapAnalyzer{next: next, logger: logger}
}

// AnalyzeGaps delegates to the wrapped analyzer and logs the operation.
func (a *LoggingGapAnalyzer) AnalyzeGaps(ctx context.Context, c *serpwatch.Comparison) (gaps []string, err error) {
	defer func(begin time.Time) {
		a.logger.Info("gap analysis",
			"keyword", c.Keyword,
			"gaps", len(gaps),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.AnalyzeGaps(ctx, c)
}

// Ensure LoggingAsker implements serpwatch.Asker.
var _ serpwatch.Asker = (*LoggingAsker)(nil)

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   serpwatch.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next serpwatch.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the operation.
func (a *LoggingAsker) Ask(ctx context.Context, question string, s *serpwatch.Session) (answer string, err error) {
	defer func(begin time.Time) {
		a.logger.Info("ask",
			"session", s != nil,
			"chars", len([]rune(answer)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, question, s)
}
