package serpwatch

// Limits applied when aggregating a comparison.
const (
	MaxBenchmarkHeadings = 20
	MaxTitleLength       = 60
)

// MetricsTable is the side-by-side comparison of the tracked page and the
// benchmark competitor. Deltas are own minus competitor.
type MetricsTable struct {
	Own        ContentMetrics `json:"own"`
	Competitor ContentMetrics `json:"competitor"`

	CharDelta    int `json:"charDelta"`
	HeadingDelta int `json:"headingDelta"`
	ImageDelta   int `json:"imageDelta"`
}

// Comparison is the merged view of one keyword handed to the gap analysis
// and to report rendering.
type Comparison struct {
	Keyword     string         `json:"keyword"`
	Rank        int            `json:"rank"`
	OwnURL      string         `json:"ownUrl"`
	Competitors []RankedResult `json:"competitors"`

	// Benchmark is the competitor selected for the comparison, with its
	// title truncated to MaxTitleLength. Nil when there were no competitors.
	Benchmark *RankedResult `json:"benchmark,omitempty"`

	// Table is nil unless metrics exist for both pages.
	Table *MetricsTable `json:"table,omitempty"`

	// CompetitorHeadings holds up to MaxBenchmarkHeadings heading labels of
	// the benchmark page. Nil whenever Table is nil.
	CompetitorHeadings []string `json:"competitorHeadings,omitempty"`
}

// Compare merges a ranking outcome with the metrics of the tracked page and
// of the benchmark competitor. OwnURL falls back to the domain's home page
// when the domain was not found in the results.
func Compare(outcome *SerpOutcome, domain string, benchmark *RankedResult, own, competitor *ContentMetrics) *Comparison {
	c := &Comparison{
		Keyword:     outcome.Keyword,
		Rank:        outcome.Rank,
		OwnURL:      outcome.OwnURL,
		Competitors: outcome.Competitors,
	}
	if c.OwnURL == "" {
		c.OwnURL = "https://" + domain
	}

	if benchmark != nil {
		b := *benchmark
		b.Title = Truncate(b.Title, MaxTitleLength)
		c.Benchmark = &b
	}

	if own == nil || competitor == nil {
		return c
	}

	c.Table = &MetricsTable{
		Own:          *own,
		Competitor:   *competitor,
		CharDelta:    own.CharCount - competitor.CharCount,
		HeadingDelta: len(own.Headings) - len(competitor.Headings),
		ImageDelta:   own.ImageCount - competitor.ImageCount,
	}

	labels := competitor.HeadingLabels()
	if len(labels) > MaxBenchmarkHeadings {
		labels = labels[:MaxBenchmarkHeadings]
	}
	c.CompetitorHeadings = labels

	return c
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
