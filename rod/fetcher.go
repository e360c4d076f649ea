package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements serpwatch.Fetcher at compile time.
var _ serpwatch.Fetcher = (*Fetcher)(nil)

// Defaults for rendering a page.
const (
	DefaultUserAgent    = "serpwatch/1.0 (+content-comparison)"
	DefaultFetchTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Second

	// idleWindow is how long the network must stay quiet to count as idle.
	idleWindow = 500 * time.Millisecond
)

// Fetcher renders URLs in a headless Chrome browser and returns the HTML.
//
// Each Fetch runs in its own incognito browser context which is disposed
// before Fetch returns. Renders are serialized: the browser is used by one
// page at a time. Fetcher is safe for concurrent use.
type Fetcher struct {
	manager *BrowserManager

	userAgent    string
	fetchTimeout time.Duration
	idleTimeout  time.Duration
	maxPages     int64

	mu     sync.Mutex
	closed bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the user agent sent with every request of the page.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithFetchTimeout bounds navigation and DOM construction of a single page.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithIdleTimeout bounds the wait for network quiescence after the DOM is
// ready. Reaching it is not an error.
func WithIdleTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.idleTimeout = d
	}
}

// WithRecycleAfter sets the number of pages rendered before the browser
// process is replaced.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser and returns a Fetcher using it.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		userAgent:    DefaultUserAgent,
		fetchTimeout: DefaultFetchTimeout,
		idleTimeout:  DefaultIdleTimeout,
		maxPages:     DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	m, err := NewBrowserManager(WithMaxPages(f.maxPages))
	if err != nil {
		return nil, err
	}
	f.manager = m
	return f, nil
}

// Fetch renders the URL and returns the serialized document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", serpwatch.Errorf(serpwatch.EINVALID, "fetcher is closed")
	}

	html, err := f.render(ctx, url)
	f.manager.IncrementPageCount()
	return html, err
}

// render must be called with mu held.
func (f *Fetcher) render(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	browser, err := f.manager.Browser().Incognito()
	if err != nil {
		return "", fmt.Errorf("creating browser context: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
		return "", fmt.Errorf("setting user agent: %w", err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Pages that keep polling never go idle; the bounded wait just returns.
	page.Timeout(f.idleTimeout).WaitRequestIdle(idleWindow, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
