package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the ask command. Without an unexpired session for the user
// the question is answered as a general SEO question.
func (c *AskCmd) Run(deps *Dependencies) error {
	var session *serpwatch.Session
	if deps.Sessions != nil {
		s, err := deps.Sessions.FindSession(deps.Ctx, c.User)
		switch {
		case serpwatch.ErrorCode(err) == serpwatch.ENOTFOUND:
			deps.logger().Debug("no session, answering without context", "user", c.User)
		case err != nil:
			logError(deps, err)
			return err
		default:
			session = s
		}
	}

	answer, err := deps.Asker.Ask(deps.Ctx, c.Question, session)
	if err != nil {
		logError(deps, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
