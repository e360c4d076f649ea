package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.MetricsExtractor = (*MetricsExtractor)(nil)

// MetricsExtractor is a mock implementation of serpwatch.MetricsExtractor.
type MetricsExtractor struct {
	ExtractMetricsFn func(html string, domain string) (*serpwatch.ContentMetrics, error)
}

func (e *MetricsExtractor) ExtractMetrics(html string, domain string) (*serpwatch.ContentMetrics, error) {
	return e.ExtractMetricsFn(html, domain)
}

var _ serpwatch.PageMeasurer = (*PageMeasurer)(nil)

// PageMeasurer is a mock implementation of serpwatch.PageMeasurer.
type PageMeasurer struct {
	MeasureFn func(ctx context.Context, url string, domain string) serpwatch.ContentMetrics
}

func (m *PageMeasurer) Measure(ctx context.Context, url string, domain string) serpwatch.ContentMetrics {
	return m.MeasureFn(ctx, url, domain)
}
