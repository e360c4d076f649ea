package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/serpwatch"
	"google.golang.org/genai"
)

// Ensure Analyzer implements serpwatch.GapAnalyzer at compile time.
var _ serpwatch.GapAnalyzer = (*Analyzer)(nil)

const analystInstruction = "You are an SEO analyst. Compare the tracked page with its competitors " +
	"and list concrete improvement actions. Answer with short bullet points only, one per line, " +
	"separating observed differences from actions."

// Analyzer turns a comparison into improvement suggestions.
type Analyzer struct {
	gen generator
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client *genai.Client, opts ...Option) *Analyzer {
	return &Analyzer{gen: newGenerator(client, opts)}
}

// AnalyzeGaps asks the model for suggestions and returns one per non-blank
// line of the answer.
func (a *Analyzer) AnalyzeGaps(ctx context.Context, c *serpwatch.Comparison) ([]string, error) {
	if c == nil || c.Keyword == "" {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "comparison keyword required")
	}
	prompt, err := BuildAnalysisPrompt(c)
	if err != nil {
		return nil, err
	}
	text, err := a.gen.generate(ctx, prompt, BuildAnalysisConfig())
	if err != nil {
		return nil, err
	}
	return ParseGaps(text), nil
}

// BuildAnalysisConfig returns the generation config for gap analysis.
func BuildAnalysisConfig() *genai.GenerateContentConfig {
	return config(analystInstruction, 0.4)
}

// BuildAnalysisPrompt renders the comparison as the user prompt. The
// metrics section is present only when the comparison has a table.
func BuildAnalysisPrompt(c *serpwatch.Comparison) (string, error) {
	competitors, err := json.MarshalIndent(c.Competitors, "", "  ")
	if err != nil {
		return "", serpwatch.Errorf(serpwatch.EINTERNAL, "encoding competitors: %v", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Keyword: %s\n", c.Keyword)
	fmt.Fprintf(&sb, "Tracked URL: %s\n", c.OwnURL)
	if c.Rank > 0 {
		fmt.Fprintf(&sb, "Current rank: %d\n", c.Rank)
	}
	fmt.Fprintf(&sb, "Top results (competitors):\n%s\n", competitors)

	if c.Table != nil {
		t := c.Table
		sb.WriteString("\nContent metrics (tracked page vs benchmark competitor")
		if c.Benchmark != nil {
			fmt.Fprintf(&sb, " %s", c.Benchmark.URL)
		}
		sb.WriteString("):\n")
		fmt.Fprintf(&sb, "- characters: %d vs %d (diff %+d)\n", t.Own.CharCount, t.Competitor.CharCount, t.CharDelta)
		fmt.Fprintf(&sb, "- headings: %d vs %d (diff %+d)\n", len(t.Own.Headings), len(t.Competitor.Headings), t.HeadingDelta)
		fmt.Fprintf(&sb, "- images: %d vs %d (diff %+d)\n", t.Own.ImageCount, t.Competitor.ImageCount, t.ImageDelta)
		fmt.Fprintf(&sb, "- internal links on the tracked page: %d\n", t.Own.InternalLinkCount)
		if len(c.CompetitorHeadings) > 0 {
			sb.WriteString("\nCompetitor heading structure:\n")
			for _, h := range c.CompetitorHeadings {
				fmt.Fprintf(&sb, "%s\n", h)
			}
		}
	}

	sb.WriteString("\nList the differences and the improvement actions as short bullet points.")
	return sb.String(), nil
}

// ParseGaps splits a model answer into suggestions. Bullet markers and
// surrounding spaces are trimmed and blank lines dropped.
func ParseGaps(text string) []string {
	gaps := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		gap := strings.Trim(strings.TrimSpace(line), "-•* ")
		if gap != "" {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}
