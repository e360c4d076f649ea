package main_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/serpwatch"
	main "github.com/fwojciec/serpwatch/cmd/serpwatch"
	"github.com/fwojciec/serpwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
	}, stdout, stderr
}

func TestRankCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the current rank", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 4})

		err := (&main.RankCmd{Keyword: "widget"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Rank: **4**")
		assert.Contains(t, stdout.String(), "https://mysite.com/widget")
	})

	t.Run("reports a domain that does not rank", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 0})

		require.NoError(t, (&main.RankCmd{Keyword: "widget"}).Run(deps))

		assert.Contains(t, stdout.String(), "mysite.com was not found")
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps()
		deps.Checker = newTestChecker(nil)

		err := (&main.RankCmd{Keyword: "widget"}).Run(deps)

		assert.Equal(t, serpwatch.EUNAVAILABLE, serpwatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: HTTP 500")
	})
}

func TestAnalyzeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the comparison and saves the session", func(t *testing.T) {
		t.Parallel()

		var saved *serpwatch.Session
		deleted := false
		deps, stdout, _ := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 3})
		deps.Sessions = &mock.SessionStore{
			SaveSessionFn: func(_ context.Context, s *serpwatch.Session) error {
				saved = s
				return nil
			},
			DeleteExpiredSessionsFn: func(context.Context) (int, error) {
				deleted = true
				return 2, nil
			},
		}

		err := (&main.AnalyzeCmd{Keyword: "widget", User: "alice"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "widget")
		assert.Contains(t, out, "1,200")
		assert.Contains(t, out, "3,000")
		assert.Contains(t, out, "Add an FAQ section")

		require.NotNil(t, saved)
		assert.Equal(t, "alice", saved.UserID)
		assert.Equal(t, "widget", saved.Keyword)
		assert.Equal(t, 3, saved.Rank)
		assert.Equal(t, "https://c2.example/page", saved.CompetitorURL)
		assert.Equal(t, 1200, saved.OwnMetrics.CharCount)
		assert.Equal(t, []string{"Add an FAQ section"}, saved.Gaps)
		assert.True(t, deleted)
	})

	t.Run("analyzes a keyword that did not regress", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 1})

		require.NoError(t, (&main.AnalyzeCmd{Keyword: "widget", User: "cli"}).Run(deps))

		assert.Contains(t, stdout.String(), "widget")
	})

	t.Run("a domain that does not rank is not analyzed", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 0})
		deps.Checker.Pages = &mock.PageMeasurer{
			MeasureFn: func(context.Context, string, string) serpwatch.ContentMetrics {
				t.Error("unexpected page measurement")
				return serpwatch.ContentMetrics{}
			},
		}
		deps.Checker.Analyzer = &mock.GapAnalyzer{
			AnalyzeGapsFn: func(context.Context, *serpwatch.Comparison) ([]string, error) {
				t.Error("unexpected analysis")
				return nil, nil
			},
		}
		deps.Sessions = &mock.SessionStore{
			SaveSessionFn: func(context.Context, *serpwatch.Session) error {
				t.Error("unexpected session save")
				return nil
			},
		}

		err := (&main.AnalyzeCmd{Keyword: "widget", User: "cli"}).Run(deps)

		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "mysite.com was not found")
	})

	t.Run("session save failure", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 3})
		deps.Sessions = &mock.SessionStore{
			SaveSessionFn: func(context.Context, *serpwatch.Session) error {
				return errors.New("disk full")
			},
		}

		err := (&main.AnalyzeCmd{Keyword: "widget", User: "cli"}).Run(deps)

		require.Error(t, err)
	})

	t.Run("analysis failure", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps()
		deps.Checker = newTestChecker(map[string]int{"widget": 3})
		deps.Checker.Analyzer = &mock.GapAnalyzer{
			AnalyzeGapsFn: func(context.Context, *serpwatch.Comparison) ([]string, error) {
				return nil, serpwatch.Errorf(serpwatch.ETIMEOUT, "analysis timed out")
			},
		}

		err := (&main.AnalyzeCmd{Keyword: "widget", User: "cli"}).Run(deps)

		assert.Equal(t, serpwatch.ETIMEOUT, serpwatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "analysis timed out")
	})
}

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists tracked keywords", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Keywords = &mock.KeywordSource{
			LoadKeywordsFn: func(context.Context) ([]serpwatch.KeywordEntry, error) {
				var entries []serpwatch.KeywordEntry
				for i := 1; i <= 3; i++ {
					entries = append(entries, serpwatch.KeywordEntry{Keyword: fmt.Sprintf("kw%d", i)})
				}
				return entries, nil
			},
		}

		require.NoError(t, (&main.StatusCmd{}).Run(deps))

		assert.Contains(t, stdout.String(), "Tracked keywords: 3")
		assert.Contains(t, stdout.String(), "kw3")
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps()
		deps.Keywords = &mock.KeywordSource{
			LoadKeywordsFn: func(context.Context) ([]serpwatch.KeywordEntry, error) {
				return nil, serpwatch.Errorf(serpwatch.EUNAVAILABLE, "sheet unavailable")
			},
		}

		err := (&main.StatusCmd{}).Run(deps)

		assert.Equal(t, serpwatch.EUNAVAILABLE, serpwatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "sheet unavailable")
	})
}

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("answers with the user's session", func(t *testing.T) {
		t.Parallel()

		session := &serpwatch.Session{UserID: "alice", Keyword: "widget", Rank: 7}
		var got *serpwatch.Session
		deps, stdout, _ := newDeps()
		deps.Sessions = &mock.SessionStore{
			FindSessionFn: func(_ context.Context, userID string) (*serpwatch.Session, error) {
				if userID == "alice" {
					return session, nil
				}
				return nil, serpwatch.Errorf(serpwatch.ENOTFOUND, "no session")
			},
		}
		deps.Asker = &mock.Asker{
			AskFn: func(_ context.Context, question string, s *serpwatch.Session) (string, error) {
				got = s
				return "Add an FAQ section.", nil
			},
		}

		err := (&main.AskCmd{Question: "what should I fix?", User: "alice"}).Run(deps)

		require.NoError(t, err)
		assert.Same(t, session, got)
		assert.Contains(t, stdout.String(), "Add an FAQ section.")
	})

	t.Run("answers without context when there is no session", func(t *testing.T) {
		t.Parallel()

		got := &serpwatch.Session{}
		deps, stdout, _ := newDeps()
		deps.Sessions = &mock.SessionStore{
			FindSessionFn: func(context.Context, string) (*serpwatch.Session, error) {
				return nil, serpwatch.Errorf(serpwatch.ENOTFOUND, "session expired")
			},
		}
		deps.Asker = &mock.Asker{
			AskFn: func(_ context.Context, _ string, s *serpwatch.Session) (string, error) {
				got = s
				return "General advice.", nil
			},
		}

		require.NoError(t, (&main.AskCmd{Question: "how do I rank?", User: "bob"}).Run(deps))

		assert.Nil(t, got)
		assert.Contains(t, stdout.String(), "General advice.")
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps()
		deps.Sessions = &mock.SessionStore{
			FindSessionFn: func(context.Context, string) (*serpwatch.Session, error) {
				return nil, errors.New("database is locked")
			},
		}

		err := (&main.AskCmd{Question: "why?", User: "bob"}).Run(deps)

		require.Error(t, err)
	})

	t.Run("asker failure", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps()
		deps.Asker = &mock.Asker{
			AskFn: func(context.Context, string, *serpwatch.Session) (string, error) {
				return "", serpwatch.Errorf(serpwatch.EINVALID, "question required")
			},
		}

		err := (&main.AskCmd{Question: " ", User: "bob"}).Run(deps)

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "question required")
	})
}
