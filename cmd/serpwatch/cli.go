package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Keywords serpwatch.KeywordSource
	Ranks    serpwatch.RankWriter
	Checker  *pipeline.Checker
	Notifier serpwatch.Notifier
	Sessions serpwatch.SessionStore
	Asker    serpwatch.Asker
	Recorder serpwatch.RunRecorder
}

// logger returns deps.Logger or a logger discarding everything.
func (deps *Dependencies) logger() *slog.Logger {
	if deps.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return deps.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `name:"config" type:"path" help:"YAML configuration file (default from SERPWATCH_CONFIG)"`

	Run     RunCmd     `cmd:"" help:"Check all tracked keywords and report regressions"`
	Rank    RankCmd    `cmd:"" help:"Show the current rank of the tracked domain for a keyword"`
	Analyze AnalyzeCmd `cmd:"" help:"Compare the tracked page with its competitor for a keyword"`
	Status  StatusCmd  `cmd:"" help:"List the tracked keywords"`
	Ask     AskCmd     `cmd:"" help:"Ask an SEO question about your latest analysis"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	DryRun      bool   `name:"dry-run" help:"Print the report instead of sending it and skip rank write-back"`
	Out         string `name:"out" short:"o" type:"path" help:"Also archive the report and results in this directory"`
	Concurrency int    `short:"c" help:"Keywords checked at the same time (default from config)"`
}

// RankCmd is the "rank" subcommand.
type RankCmd struct {
	Keyword string `arg:"" help:"Keyword to look up"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	Keyword string `arg:"" help:"Keyword to analyze"`
	User    string `name:"user" short:"u" default:"cli" help:"Save the analysis as this user's session"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
	User     string `name:"user" short:"u" default:"cli" help:"Answer in the context of this user's session"`
}
