package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.KeywordSource = (*KeywordSource)(nil)

// KeywordSource is a mock implementation of serpwatch.KeywordSource.
type KeywordSource struct {
	LoadKeywordsFn func(ctx context.Context) ([]serpwatch.KeywordEntry, error)
}

func (s *KeywordSource) LoadKeywords(ctx context.Context) ([]serpwatch.KeywordEntry, error) {
	return s.LoadKeywordsFn(ctx)
}

var _ serpwatch.RankWriter = (*RankWriter)(nil)

// RankWriter is a mock implementation of serpwatch.RankWriter.
type RankWriter struct {
	WriteRanksFn func(ctx context.Context, updates []serpwatch.RankUpdate) error
}

func (w *RankWriter) WriteRanks(ctx context.Context, updates []serpwatch.RankUpdate) error {
	return w.WriteRanksFn(ctx, updates)
}

var _ serpwatch.GapAnalyzer = (*GapAnalyzer)(nil)

// GapAnalyzer is a mock implementation of serpwatch.GapAnalyzer.
type GapAnalyzer struct {
	AnalyzeGapsFn func(ctx context.Context, c *serpwatch.Comparison) ([]string, error)
}

func (a *GapAnalyzer) AnalyzeGaps(ctx context.Context, c *serpwatch.Comparison) ([]string, error) {
	return a.AnalyzeGapsFn(ctx, c)
}

var _ serpwatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of serpwatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, message string) error
}

func (n *Notifier) Notify(ctx context.Context, message string) error {
	return n.NotifyFn(ctx, message)
}

var _ serpwatch.RunRecorder = (*RunRecorder)(nil)

// RunRecorder is a mock implementation of serpwatch.RunRecorder.
type RunRecorder struct {
	RecordRunFn func(ctx context.Context, s serpwatch.RunSummary) error
}

func (r *RunRecorder) RecordRun(ctx context.Context, s serpwatch.RunSummary) error {
	return r.RecordRunFn(ctx, s)
}

var _ serpwatch.ReportArchive = (*ReportArchive)(nil)

// ReportArchive is a mock implementation of serpwatch.ReportArchive.
type ReportArchive struct {
	SaveFn   func(ctx context.Context, name string, content []byte) error
	CommitFn func() error
	AbortFn  func() error
}

func (a *ReportArchive) Save(ctx context.Context, name string, content []byte) error {
	return a.SaveFn(ctx, name, content)
}

func (a *ReportArchive) Commit() error {
	return a.CommitFn()
}

func (a *ReportArchive) Abort() error {
	return a.AbortFn()
}
