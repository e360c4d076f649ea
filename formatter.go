package serpwatch

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Presentation limits for rendered reports.
const (
	ReportCompetitors = 5
	ReportGaps        = 5
	StatusKeywords    = 10
)

var printer = message.NewPrinter(language.English)

// FormatReport renders the keyword reports of one run as markdown. Keywords
// are numbered in the order given.
func FormatReport(reports []*KeywordReport, at time.Time) string {
	var sb strings.Builder
	sb.WriteString("# 📉 SEO rank report\n")
	fmt.Fprintf(&sb, "Run: %s\n", at.UTC().Format(time.RFC3339))

	if len(reports) == 0 {
		sb.WriteString("\nNo regressions detected.\n")
		return sb.String()
	}

	for i, r := range reports {
		sb.WriteString("\n")
		sb.WriteString(FormatKeywordReport(i+1, r))
	}
	return sb.String()
}

// FormatKeywordReport renders a single keyword section numbered n.
func FormatKeywordReport(n int, r *KeywordReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %d. %s\n", n, r.Keyword)
	fmt.Fprintf(&sb, "Rank: **%s** (previous: %s)%s\n", rankLabel(r.Rank), rankLabel(r.PreviousRank), rankMarker(r.RankDelta))
	if r.OwnURL != "" {
		fmt.Fprintf(&sb, "🔗 %s\n", r.OwnURL)
	}

	if len(r.Competitors) > 0 {
		sb.WriteString("Top competitors:\n")
		for _, c := range r.Competitors[:min(len(r.Competitors), ReportCompetitors)] {
			title := Truncate(c.Title, MaxTitleLength)
			if title == "" {
				title = "N/A"
			}
			fmt.Fprintf(&sb, "- %s: %s\n", title, c.URL)
		}
	}

	if r.Table != nil {
		sb.WriteString("📈 Content comparison\n")
		sb.WriteString(FormatTable(r.Table))
		if r.Benchmark != nil {
			title := r.Benchmark.Title
			if title == "" {
				title = "N/A"
			}
			fmt.Fprintf(&sb, "🏆 Benchmark: %s\n%s\n", title, r.Benchmark.URL)
		}
	}

	if len(r.Gaps) > 0 {
		sb.WriteString("🤖 Suggested actions:\n")
		for _, g := range r.Gaps[:min(len(r.Gaps), ReportGaps)] {
			fmt.Fprintf(&sb, "• %s\n", g)
		}
	}
	return sb.String()
}

// FormatTable renders a metrics table as a fixed-width code block.
func FormatTable(t *MetricsTable) string {
	var sb strings.Builder
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "%-10s %10s %10s %10s\n", "metric", "own", "rival", "diff")
	sb.WriteString(strings.Repeat("-", 43) + "\n")
	row := func(name string, own, rival, diff int) {
		fmt.Fprintf(&sb, "%-10s %10s %10s %10s\n", name, groupInt(own), groupInt(rival), signedInt(diff))
	}
	row("chars", t.Own.CharCount, t.Competitor.CharCount, t.CharDelta)
	row("headings", len(t.Own.Headings), len(t.Competitor.Headings), t.HeadingDelta)
	row("images", t.Own.ImageCount, t.Competitor.ImageCount, t.ImageDelta)
	sb.WriteString("```\n")
	return sb.String()
}

// FormatRank renders the current rank of domain for a keyword.
func FormatRank(o *SerpOutcome, domain string) string {
	if !o.Found() {
		return fmt.Sprintf("🔍 %s\n❌ %s was not found in the results\n", o.Keyword, domain)
	}
	return fmt.Sprintf("🔍 %s\nRank: **%d**\n🔗 %s\n", o.Keyword, o.Rank, o.OwnURL)
}

// FormatStatus renders the number of tracked keywords and the first few of them.
func FormatStatus(entries []KeywordEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Tracked keywords: %d\n", len(entries))
	for _, e := range entries[:min(len(entries), StatusKeywords)] {
		fmt.Fprintf(&sb, "• %s\n", e.Keyword)
	}
	if len(entries) > StatusKeywords {
		fmt.Fprintf(&sb, "... and %d more\n", len(entries)-StatusKeywords)
	}
	return sb.String()
}

func rankLabel(rank int) string {
	if rank <= 0 {
		return "unknown"
	}
	return fmt.Sprint(rank)
}

func rankMarker(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf(" 🔻%d", delta)
	case delta < 0:
		return fmt.Sprintf(" 🔺%d", -delta)
	}
	return ""
}

func groupInt(n int) string {
	return printer.Sprintf("%d", n)
}

func signedInt(n int) string {
	if n > 0 {
		return "+" + groupInt(n)
	}
	return groupInt(n)
}
