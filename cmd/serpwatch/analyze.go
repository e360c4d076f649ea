package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the analyze command. The comparison runs whether or not the
// keyword regressed, and is kept as the user's session for follow-up
// questions. A domain that does not rank is ENOTFOUND.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	ctx, logger := deps.Ctx, deps.logger()

	outcome, err := deps.Checker.Rank(ctx, c.Keyword)
	if err != nil {
		logError(deps, err)
		return err
	}

	if !outcome.Found() {
		err := serpwatch.Errorf(serpwatch.ENOTFOUND, "%s was not found in the results for %q", deps.Checker.Domain, c.Keyword)
		logError(deps, err)
		return err
	}

	report, err := deps.Checker.Analyze(ctx, outcome, 0)
	if err != nil {
		logError(deps, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, serpwatch.FormatKeywordReport(1, report))

	if deps.Sessions == nil {
		return nil
	}
	if err := deps.Sessions.SaveSession(ctx, serpwatch.NewSession(c.User, report)); err != nil {
		logError(deps, err)
		return err
	}
	if n, err := deps.Sessions.DeleteExpiredSessions(ctx); err != nil {
		logger.Warn("expired sessions not removed", "err", err)
	} else if n > 0 {
		logger.Debug("expired sessions removed", "count", n)
	}
	return nil
}
