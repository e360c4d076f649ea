package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/gemini"
	"github.com/fwojciec/serpwatch/goquery"
	swhttp "github.com/fwojciec/serpwatch/http"
	"github.com/fwojciec/serpwatch/pipeline"
	swprom "github.com/fwojciec/serpwatch/prometheus"
	"github.com/fwojciec/serpwatch/rod"
	"github.com/fwojciec/serpwatch/sheets"
	swslog "github.com/fwojciec/serpwatch/slog"
	"github.com/fwojciec/serpwatch/sqlite"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads environment variables. Set before calling Run().
	Getenv func(string) string

	// SQLite database holding chat sessions, opened on demand.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases every resource opened by Run, in reverse order.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serpwatch"),
		kong.Description("Track search rankings and explain regressions."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serpwatch --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config, m.Getenv)
	if err != nil {
		return err
	}
	if cmd == "run" && cli.Run.DryRun {
		cfg.DryRun = true
	}
	deps.Config = cfg

	logger, closeLog, err := NewLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	m.closers = append(m.closers, closeLog)
	defer m.Close()
	deps.Logger = logger

	if err := cfg.Validate(requiredSettings(cmd, cfg.DryRun)...); err != nil {
		fmt.Fprintf(stderr, "Hint: settings are read from the environment or from --config\n")
		return err
	}

	if err := m.wire(ctx, cmd, deps); err != nil {
		return err
	}

	if err := kongCtx.Run(deps); err != nil {
		logger.Error("command failed", "command", cmd, "err", err)
		return err
	}
	return nil
}

// requiredSettings returns the settings cmd cannot run without.
func requiredSettings(cmd string, dryRun bool) []string {
	sheetsSettings := []string{serviceAccountEnv, spreadsheetIDEnv, sheetsRangeEnv}
	serpSettings := []string{serpAPIKeyEnv, serpEndpointEnv, ownDomainEnv}

	switch cmd {
	case "run":
		required := append(append(sheetsSettings, serpSettings...), geminiAPIKeyEnv)
		if !dryRun {
			required = append(required, discordWebhookEnv)
		}
		return required
	case "rank":
		return serpSettings
	case "analyze":
		return append(serpSettings, geminiAPIKeyEnv)
	case "status":
		return sheetsSettings
	case "ask":
		return []string{geminiAPIKeyEnv}
	}
	return nil
}

// wire builds the services cmd uses.
func (m *Main) wire(ctx context.Context, cmd string, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	switch cmd {
	case "run", "status":
		store, err := m.newSheetsStore(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Keywords, deps.Ranks = store, store
	}

	switch cmd {
	case "run", "rank", "analyze":
		checker := &pipeline.Checker{
			Ranks:       swslog.NewLoggingRankProvider(newRankProvider(cfg), logger),
			Domain:      cfg.Domain,
			TopN:        cfg.TopN,
			Concurrency: cfg.Concurrency,
			Limiter:     pipeline.NewKeyLimiter(cfg.Serp.RequestsPerSecond),
			Logger:      logger,
		}
		if cmd != "rank" {
			fetcher, err := m.newFetcher(cfg, deps.Stderr)
			if err != nil {
				return err
			}
			checker.Pages = &pipeline.Measurer{
				Fetcher:   swslog.NewLoggingFetcher(fetcher, logger),
				Extractor: goquery.NewMetricsExtractor(),
				Limiter:   pipeline.NewKeyLimiter(1),
				Logger:    logger,
			}

			client, err := newGenAIClient(ctx, cfg, deps.Stderr)
			if err != nil {
				return err
			}
			checker.Analyzer = swslog.NewLoggingGapAnalyzer(
				gemini.NewAnalyzer(client, gemini.WithModel(cfg.Gemini.Model)), logger)
		}
		deps.Checker = checker
	}

	switch cmd {
	case "analyze", "ask":
		sessions, err := m.openSessions(cfg, deps.Stderr)
		if err != nil {
			return err
		}
		deps.Sessions = sessions
	}

	if cmd == "ask" {
		client, err := newGenAIClient(ctx, cfg, deps.Stderr)
		if err != nil {
			return err
		}
		deps.Asker = swslog.NewLoggingAsker(gemini.NewAsker(client, gemini.WithModel(cfg.Gemini.Model)), logger)
	}

	if cmd == "run" {
		if !cfg.DryRun {
			deps.Notifier = swslog.NewLoggingNotifier(swhttp.NewNotifier(cfg.Discord.WebhookURL, nil), logger)
		}
		if cfg.Pushgateway.URL != "" {
			opts := []swprom.Option{swprom.WithJob(cfg.Pushgateway.Job)}
			if cfg.Domain != "" {
				opts = append(opts, swprom.WithGrouping("domain", cfg.Domain))
			}
			deps.Recorder = swprom.NewPusher(cfg.Pushgateway.URL, opts...)
		}
	}
	return nil
}

func (m *Main) newSheetsStore(ctx context.Context, cfg *Config) (*sheets.Store, error) {
	var opts []option.ClientOption
	if cfg.Sheets.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	}
	return sheets.NewStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range, opts...)
}

func newRankProvider(cfg *Config) *swhttp.RankProvider {
	return swhttp.NewRankProvider(cfg.Serp.Endpoint, cfg.Serp.APIKey,
		swhttp.WithRankParams(swhttp.RankParams{
			KeyParam:      cfg.Serp.KeyParam,
			QueryParam:    cfg.Serp.QueryParam,
			LocationParam: cfg.Serp.LocationParam,
			LocationValue: cfg.Serp.LocationValue,
			LanguageParam: cfg.Serp.LanguageParam,
			LanguageValue: cfg.Serp.LanguageValue,
		}),
	)
}

// newFetcher starts the configured renderer. The browser is closed by Close.
func (m *Main) newFetcher(cfg *Config, stderr io.Writer) (serpwatch.Fetcher, error) {
	var fetcher serpwatch.Fetcher
	switch cfg.Render.Renderer {
	case RendererStatic:
		fetcher = swhttp.NewFetcher(
			swhttp.WithTimeout(cfg.Render.Timeout),
			swhttp.WithUserAgent(cfg.Render.UserAgent),
		)
	default:
		f, err := rod.NewFetcher(
			rod.WithUserAgent(cfg.Render.UserAgent),
			rod.WithFetchTimeout(cfg.Render.Timeout),
			rod.WithIdleTimeout(cfg.Render.IdleTimeout),
			rod.WithRecycleAfter(cfg.Render.RecycleAfter),
		)
		if err != nil {
			fmt.Fprintf(stderr, "Hint: Chrome or Chromium must be installed, or set %s=%s\n", rendererEnv, RendererStatic)
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	}
	m.closers = append(m.closers, fetcher.Close)
	return fetcher, nil
}

func newGenAIClient(ctx context.Context, cfg *Config, stderr io.Writer) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid. Get a key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

func (m *Main) openSessions(cfg *Config, stderr io.Writer) (*sqlite.SessionStore, error) {
	path := cfg.DBPath
	if path == "" {
		path = defaultDBPath()
	}

	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set %s to use a different database path\n", dbPathEnv)
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	m.closers = append(m.closers, m.DB.Close)

	sessions := sqlite.NewSessionStore(m.DB)
	if cfg.SessionTTL > 0 {
		sessions.TTL = cfg.SessionTTL
	}
	return sessions, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "serpwatch.db"
	}
	dir := filepath.Join(home, ".serpwatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serpwatch.db")
}

// logError prints the user-facing message of err to stderr.
func logError(deps *Dependencies, err error) {
	fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
}
