// Package pipeline runs the rank check of tracked keywords: it fetches
// ranked results, detects regressions and assembles the comparison report
// of every keyword that regressed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of keywords checked at the same time.
const DefaultConcurrency = 2

// serpKey is the Limiter key of ranked-results requests.
const serpKey = "serp"

// Checker checks keywords against the tracked domain.
type Checker struct {
	Ranks    serpwatch.RankProvider
	Pages    serpwatch.PageMeasurer
	Analyzer serpwatch.GapAnalyzer

	// Domain is the tracked site, matched as a substring of result URLs.
	Domain string

	// TopN is the rank threshold for analysis. Defaults to serpwatch.DefaultTopN.
	TopN int

	// Concurrency caps the keywords processed at once. Defaults to DefaultConcurrency.
	Concurrency int

	// RetryDelays are the waits between ranked-results attempts.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	// Limiter, if set, paces ranked-results requests.
	Limiter Limiter

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of checking one keyword.
type Result struct {
	Entry serpwatch.KeywordEntry

	// Outcome is nil when the ranked results could not be fetched.
	Outcome *serpwatch.SerpOutcome

	// Report is set only for keywords that regressed within the top N.
	Report *serpwatch.KeywordReport

	Err error
}

// RunResult is the outcome of a batch run.
type RunResult struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	// Results are in the order of the input entries.
	Results []*Result

	// ExtractionFailures counts page measurements that degraded to zero
	// metrics, when the measurer reports it.
	ExtractionFailures int64
}

// Reports returns the keyword reports in input order.
func (r *RunResult) Reports() []*serpwatch.KeywordReport {
	reports := []*serpwatch.KeywordReport{}
	for _, res := range r.Results {
		if res.Report != nil {
			reports = append(reports, res.Report)
		}
	}
	return reports
}

// RankUpdates returns the new rank of every keyword whose rank was found and
// whose source row is known. Keywords that were not found keep their
// previous value in the source.
func (r *RunResult) RankUpdates() []serpwatch.RankUpdate {
	var updates []serpwatch.RankUpdate
	for _, res := range r.Results {
		if res.Outcome == nil || !res.Outcome.Found() || res.Entry.Row <= 0 {
			continue
		}
		updates = append(updates, serpwatch.RankUpdate{Row: res.Entry.Row, Rank: res.Outcome.Rank})
	}
	return updates
}

// Failures returns the number of keywords whose check failed.
func (r *RunResult) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Found returns the number of keywords where the tracked domain ranked.
func (r *RunResult) Found() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome != nil && res.Outcome.Found() {
			n++
		}
	}
	return n
}

// Summary returns the counters of the run.
func (r *RunResult) Summary() serpwatch.RunSummary {
	return serpwatch.RunSummary{
		RunID:              r.ID,
		Keywords:           len(r.Results),
		Found:              r.Found(),
		Regressions:        len(r.Reports()),
		Failures:           r.Failures(),
		ExtractionFailures: r.ExtractionFailures,
		Duration:           r.Duration,
		FinishedAt:         r.StartedAt.Add(r.Duration),
	}
}

// ProgressEvent reports the completion of one keyword during Run.
type ProgressEvent struct {
	Completed int
	Total     int
	Keyword   string
	Err       error
}

// ProgressFunc receives progress events. It may be called concurrently.
type ProgressFunc func(ProgressEvent)

// failureCounter is implemented by measurers that count degraded pages.
type failureCounter interface {
	Failures() int64
}

// Run checks every entry. A failed keyword is logged and recorded in its
// Result without stopping the others. Run only fails when ctx ends.
func (c *Checker) Run(ctx context.Context, entries []serpwatch.KeywordEntry, progress ProgressFunc) (*RunResult, error) {
	run := &RunResult{
		ID:        uuid.NewString(),
		StartedAt: c.now(),
		Results:   make([]*Result, len(entries)),
	}
	logger := c.logger().With("run", run.ID)
	logger.Info("run started", "keywords", len(entries))

	var before int64
	fc, counting := c.Pages.(failureCounter)
	if counting {
		before = fc.Failures()
	}

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())
	for i, e := range entries {
		g.Go(func() error {
			res, err := c.Check(gctx, e)
			if err != nil {
				res = &Result{Entry: e, Err: err}
				logger.Error("keyword failed", "keyword", e.Keyword, "err", err)
			}
			run.Results[i] = res
			if progress != nil {
				progress(ProgressEvent{
					Completed: int(completed.Add(1)),
					Total:     len(entries),
					Keyword:   e.Keyword,
					Err:       err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if counting {
		run.ExtractionFailures = fc.Failures() - before
	}
	run.Duration = c.now().Sub(run.StartedAt)

	if err := ctx.Err(); err != nil {
		return run, err
	}

	logger.Info("run finished",
		"keywords", len(entries),
		"found", run.Found(),
		"regressions", len(run.Reports()),
		"failures", run.Failures(),
		"duration", run.Duration,
	)
	return run, nil
}

// Check fetches the ranked results for one keyword and, when the tracked
// page regressed within the top N, analyzes it. Errors from the ranking or
// analysis calls are returned; the keyword then has no result.
func (c *Checker) Check(ctx context.Context, e serpwatch.KeywordEntry) (*Result, error) {
	outcome, err := c.Rank(ctx, e.Keyword)
	if err != nil {
		return nil, err
	}

	res := &Result{Entry: e, Outcome: outcome}
	if !serpwatch.NeedsAnalysis(outcome.Rank, e.PreviousRank, c.topN()) {
		c.logger().Debug("no regression", "keyword", e.Keyword, "rank", outcome.Rank, "previous", e.PreviousRank)
		return res, nil
	}

	report, err := c.Analyze(ctx, outcome, e.PreviousRank)
	if err != nil {
		return nil, err
	}
	res.Report = report
	return res, nil
}

// Rank fetches the ranked results for keyword, retrying failed requests,
// and locates the tracked domain in them.
func (c *Checker) Rank(ctx context.Context, keyword string) (*serpwatch.SerpOutcome, error) {
	onRetry := func(attempt int, err error) {
		c.logger().Warn("retrying ranked results", "keyword", keyword, "attempt", attempt, "err", err)
	}
	raw, err := Retry(ctx, c.retryDelays(), onRetry, func(ctx context.Context) ([]serpwatch.RawResult, error) {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, serpKey); err != nil {
				return nil, err
			}
		}
		return c.Ranks.FetchResults(ctx, keyword)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching results for %q: %w", keyword, err)
	}
	return serpwatch.ExtractRank(keyword, raw, c.Domain), nil
}

// Analyze compares the tracked page with the competitor ranking directly
// above it and asks for improvement suggestions. It does not check for a
// regression. A page that cannot be measured contributes zero metrics; a
// page that does not exist (tracked domain not ranked, no competitors)
// contributes none.
func (c *Checker) Analyze(ctx context.Context, outcome *serpwatch.SerpOutcome, previousRank int) (*serpwatch.KeywordReport, error) {
	var own, competitor *serpwatch.ContentMetrics
	if outcome.OwnURL != "" {
		m := c.Pages.Measure(ctx, outcome.OwnURL, c.Domain)
		own = &m
	}

	var benchmark *serpwatch.RankedResult
	if b, ok := serpwatch.SelectCompetitor(outcome.Competitors, outcome.Rank); ok {
		benchmark = &b
		if b.URL != "" {
			m := c.Pages.Measure(ctx, b.URL, "")
			competitor = &m
		}
	}

	comparison := serpwatch.Compare(outcome, c.Domain, benchmark, own, competitor)

	var gaps []string
	if c.Analyzer != nil {
		var err error
		gaps, err = c.Analyzer.AnalyzeGaps(ctx, comparison)
		if err != nil {
			return nil, fmt.Errorf("analyzing %q: %w", outcome.Keyword, err)
		}
	}
	return serpwatch.NewKeywordReport(comparison, previousRank, own, competitor, gaps), nil
}

func (c *Checker) topN() int {
	if c.TopN <= 0 {
		return serpwatch.DefaultTopN
	}
	return c.TopN
}

func (c *Checker) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Checker) retryDelays() []time.Duration {
	if c.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return c.RetryDelays
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Checker) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
