package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingRankProvider implements serpwatch.RankProvider.
var _ serpwatch.RankProvider = (*LoggingRankProvider)(nil)

// LoggingRankProvider wraps a RankProvider with logging.
type LoggingRankProvider struct {
	next   serpwatch.RankProvider
	logger *slog.Logger
}

// NewLoggingRankProvider creates a new LoggingRankProvider.
func NewLoggingRankProvider(next serpwatch.RankProvider, logger *slog.Logger) *LoggingRankProvider {
	return &LoggingRankProvider{next: next, logger: logger}
}

// FetchResults delegates to the wrapped provider and logs the operation.
func (p *LoggingRankProvider) FetchResults(ctx context.Context, keyword string) (results []serpwatch.RawResult, err error) {
	defer func(begin time.Time) {
		p.logger.Info("ranked results",
			"keyword", keyword,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.FetchResults(ctx, keyword)
}
