package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/fs"
	"github.com/fwojciec/serpwatch/pipeline"
)

// Names of the files written to the --out directory.
const (
	reportFileName  = "report.md"
	resultsFileName = "results.json"
)

// runResults is the JSON document archived next to the report.
type runResults struct {
	Summary serpwatch.RunSummary       `json:"summary"`
	Reports []*serpwatch.KeywordReport `json:"reports"`
	Ranks   []serpwatch.RankUpdate     `json:"ranks"`
	Failed  []failedKeyword            `json:"failed"`
}

type failedKeyword struct {
	Keyword string `json:"keyword"`
	Error   string `json:"error"`
}

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	ctx, logger := deps.Ctx, deps.logger()
	dryRun := c.DryRun || (deps.Config != nil && deps.Config.DryRun)

	entries, err := deps.Keywords.LoadKeywords(ctx)
	if err != nil {
		logError(deps, err)
		return err
	}
	if len(entries) == 0 {
		logger.Warn("no keywords found")
		return nil
	}

	checker := deps.Checker
	if c.Concurrency > 0 {
		checker.Concurrency = c.Concurrency
	}

	run, err := checker.Run(ctx, entries, func(e pipeline.ProgressEvent) {
		logger.Debug("keyword checked", "keyword", e.Keyword, "completed", e.Completed, "total", e.Total)
	})
	if err != nil {
		return err
	}
	logger = logger.With("run", run.ID)

	reports := run.Reports()
	report := serpwatch.FormatReport(reports, run.StartedAt)

	if c.Out != "" {
		archive := fs.NewArchive(filepath.Dir(c.Out), filepath.Base(c.Out))
		if err := archiveRun(ctx, archive, run, report); err != nil {
			logError(deps, err)
			return err
		}
		logger.Info("report archived", "dir", c.Out)
	}

	switch {
	case len(reports) == 0:
		logger.Info("no regressions within the top N detected")
	case dryRun:
		logger.Info("dry run: report not sent", "regressions", len(reports))
		fmt.Fprintln(deps.Stdout, report)
	default:
		if err := deps.Notifier.Notify(ctx, report); err != nil {
			logError(deps, err)
			return err
		}
		logger.Info("report sent", "regressions", len(reports))
	}

	if updates := run.RankUpdates(); dryRun {
		logger.Info("dry run: ranks not written back", "ranks", len(updates))
	} else if len(updates) > 0 {
		if err := deps.Ranks.WriteRanks(ctx, updates); err != nil {
			logError(deps, err)
			return err
		}
		logger.Info("ranks written back", "ranks", len(updates))
	}

	if deps.Recorder != nil {
		if err := deps.Recorder.RecordRun(ctx, run.Summary()); err != nil {
			logger.Warn("run metrics not recorded", "err", err)
		}
	}
	return nil
}

// archiveRun writes the report and the run results to archive. Either both
// files are published or neither is.
func archiveRun(ctx context.Context, archive serpwatch.ReportArchive, run *pipeline.RunResult, report string) (err error) {
	defer func() {
		if err != nil {
			_ = archive.Abort()
		}
	}()

	results := runResults{
		Summary: run.Summary(),
		Reports: run.Reports(),
		Ranks:   run.RankUpdates(),
		Failed:  []failedKeyword{},
	}
	if results.Ranks == nil {
		results.Ranks = []serpwatch.RankUpdate{}
	}
	for _, res := range run.Results {
		if res.Err != nil {
			results.Failed = append(results.Failed, failedKeyword{Keyword: res.Entry.Keyword, Error: res.Err.Error()})
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}

	if err := archive.Save(ctx, reportFileName, []byte(report)); err != nil {
		return err
	}
	if err := archive.Save(ctx, resultsFileName, data); err != nil {
		return err
	}
	return archive.Commit()
}
