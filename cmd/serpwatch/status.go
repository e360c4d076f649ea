package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	entries, err := deps.Keywords.LoadKeywords(deps.Ctx)
	if err != nil {
		logError(deps, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, serpwatch.FormatStatus(entries))
	return nil
}
