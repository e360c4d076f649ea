package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/fwojciec/serpwatch"
)

// Ensure Measurer implements serpwatch.PageMeasurer at compile time.
var _ serpwatch.PageMeasurer = (*Measurer)(nil)

// Measurer renders pages and measures their content. Retrieval and parse
// failures are logged as warnings and yield zero metrics.
type Measurer struct {
	Fetcher   serpwatch.Fetcher
	Extractor serpwatch.MetricsExtractor

	// Limiter, if set, paces renders per host.
	Limiter Limiter
	Logger  *slog.Logger

	failures atomic.Int64
}

// Measure returns the content metrics of the page at pageURL. domain is
// passed through for internal link counting and may be empty.
func (m *Measurer) Measure(ctx context.Context, pageURL string, domain string) serpwatch.ContentMetrics {
	metrics, err := m.measure(ctx, pageURL, domain)
	if err != nil {
		m.failures.Add(1)
		m.logger().Warn("content extraction failed", "url", pageURL, "err", err)
		return serpwatch.ContentMetrics{Headings: []serpwatch.Heading{}}
	}
	return *metrics
}

// Failures returns how many measurements have degraded to zero metrics.
func (m *Measurer) Failures() int64 {
	return m.failures.Load()
}

func (m *Measurer) measure(ctx context.Context, pageURL string, domain string) (*serpwatch.ContentMetrics, error) {
	if m.Limiter != nil {
		host := pageURL
		if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
			host = u.Host
		}
		if err := m.Limiter.Wait(ctx, host); err != nil {
			return nil, err
		}
	}

	html, err := m.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return m.Extractor.ExtractMetrics(html, domain)
}

func (m *Measurer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
