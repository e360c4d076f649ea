package serpwatch

import (
	"context"
	"fmt"
)

// MaxHeadingLength is the number of characters kept from a heading's text.
const MaxHeadingLength = 50

// Heading is a heading element found in a page's primary content region.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// String renders the heading as "H<level>: <text>".
func (h Heading) String() string {
	return fmt.Sprintf("H%d: %s", h.Level, h.Text)
}

// ContentMetrics are structural measurements of a page's primary content
// region. The zero value is the result for a page that could not be
// retrieved or parsed.
type ContentMetrics struct {
	// CharCount is the number of non-whitespace characters of visible text.
	CharCount int `json:"charCount"`

	// Headings are the h1-h6 elements in document order.
	Headings []Heading `json:"headings"`

	ImageCount        int `json:"imageCount"`
	InternalLinkCount int `json:"internalLinkCount"`
}

// HeadingLabels returns the headings rendered with Heading.String.
func (m *ContentMetrics) HeadingLabels() []string {
	labels := make([]string, 0, len(m.Headings))
	for _, h := range m.Headings {
		labels = append(labels, h.String())
	}
	return labels
}

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL, waits for the page to render,
	// and returns the rendered HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// MetricsExtractor computes content metrics from an HTML document.
type MetricsExtractor interface {
	// ExtractMetrics strips boilerplate, locates the primary content region
	// and measures it. When domain is non-empty, anchors pointing at it or
	// at root-relative paths are counted as internal links.
	ExtractMetrics(html string, domain string) (*ContentMetrics, error)
}

// PageMeasurer renders a URL and measures its content. Measure never fails:
// retrieval or parse errors yield zero metrics.
type PageMeasurer interface {
	Measure(ctx context.Context, url string, domain string) ContentMetrics
}
