package serpwatch

import (
	"context"
	"time"
)

// KeywordEntry is a keyword tracked in the keyword source.
type KeywordEntry struct {
	Keyword string `json:"keyword"`

	// PreviousRank is the last observed rank. Zero means unknown.
	PreviousRank int `json:"previousRank,omitempty"`

	// Row is the 1-based row of the entry in its source. Zero means the
	// entry cannot be written back.
	Row int `json:"row,omitempty"`
}

// KeywordReport is the analysis of one keyword that regressed within the
// top-N threshold.
type KeywordReport struct {
	Keyword      string `json:"keyword"`
	Rank         int    `json:"rank"`
	PreviousRank int    `json:"previousRank"`

	// RankDelta is Rank minus PreviousRank; positive means the page dropped.
	RankDelta int `json:"rankDelta"`

	OwnURL      string         `json:"ownUrl"`
	Competitors []RankedResult `json:"competitors"`
	Benchmark   *RankedResult  `json:"benchmark,omitempty"`

	OwnMetrics        *ContentMetrics `json:"ownMetrics,omitempty"`
	CompetitorMetrics *ContentMetrics `json:"competitorMetrics,omitempty"`

	Table              *MetricsTable `json:"table,omitempty"`
	CompetitorHeadings []string      `json:"competitorHeadings,omitempty"`

	// Gaps are improvement suggestions from the gap analysis.
	Gaps []string `json:"gaps"`
}

// NewKeywordReport builds a report from a comparison and the analysis result.
func NewKeywordReport(c *Comparison, previousRank int, own, competitor *ContentMetrics, gaps []string) *KeywordReport {
	r := &KeywordReport{
		Keyword:            c.Keyword,
		Rank:               c.Rank,
		PreviousRank:       previousRank,
		OwnURL:             c.OwnURL,
		Competitors:        c.Competitors,
		Benchmark:          c.Benchmark,
		OwnMetrics:         own,
		CompetitorMetrics:  competitor,
		Table:              c.Table,
		CompetitorHeadings: c.CompetitorHeadings,
		Gaps:               gaps,
	}
	if c.Rank > 0 && previousRank > 0 {
		r.RankDelta = c.Rank - previousRank
	}
	if r.Gaps == nil {
		r.Gaps = []string{}
	}
	return r
}

// RankUpdate is a new rank to be written back to the keyword source.
type RankUpdate struct {
	Row  int `json:"row"`
	Rank int `json:"rank"`
}

// KeywordSource loads the tracked keywords.
type KeywordSource interface {
	LoadKeywords(ctx context.Context) ([]KeywordEntry, error)
}

// RankWriter persists new ranks next to their keywords.
type RankWriter interface {
	WriteRanks(ctx context.Context, updates []RankUpdate) error
}

// GapAnalyzer asks a generative model for improvement suggestions.
type GapAnalyzer interface {
	// AnalyzeGaps returns suggestions in the order the model produced them.
	// A response without candidates yields an empty list, not an error.
	AnalyzeGaps(ctx context.Context, c *Comparison) ([]string, error)
}

// Notifier delivers a rendered report to a notification channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ReportArchive collects the files of one run in a staging area and
// publishes them together. Nothing is visible until Commit succeeds.
type ReportArchive interface {
	// Save stages a file. name must be a plain file name.
	Save(ctx context.Context, name string, content []byte) error

	// Commit publishes every staged file, replacing the previous archive.
	Commit() error

	// Abort discards the staged files.
	Abort() error
}

// RunSummary holds the counters of one batch run.
type RunSummary struct {
	RunID              string        `json:"runId"`
	Keywords           int           `json:"keywords"`
	Found              int           `json:"found"`
	Regressions        int           `json:"regressions"`
	Failures           int           `json:"failures"`
	ExtractionFailures int64         `json:"extractionFailures"`
	Duration           time.Duration `json:"duration"`
	FinishedAt         time.Time     `json:"finishedAt"`
}

// RunRecorder records the outcome of batch runs for monitoring.
type RunRecorder interface {
	RecordRun(ctx context.Context, s RunSummary) error
}
