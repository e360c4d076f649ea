package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the rank command.
func (c *RankCmd) Run(deps *Dependencies) error {
	outcome, err := deps.Checker.Rank(deps.Ctx, c.Keyword)
	if err != nil {
		logError(deps, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, serpwatch.FormatRank(outcome, deps.Checker.Domain))
	return nil
}
