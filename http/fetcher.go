package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Defaults for static page retrieval.
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBodySize  = 10 << 20
)

// Ensure Fetcher implements serpwatch.Fetcher at compile time.
var _ serpwatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain GET requests. Unlike rod.Fetcher it
// does not execute JavaScript, so client-rendered content is missed; it
// is meant for hosts without a browser.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a whole request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a static Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: DefaultFetchTimeout},
		maxBody: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of the page at url, truncated to the body limit.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", serpwatch.Errorf(serpwatch.EINVALID, "invalid page URL %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", transportError(ctx, "page request", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return "", statusError("page request "+url, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", transportError(ctx, "reading page", err)
	}
	return string(body), nil
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
