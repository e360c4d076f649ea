// Package goquery implements HTML analysis on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serpwatch"
	"golang.org/x/net/html"
)

// Ensure MetricsExtractor implements serpwatch.MetricsExtractor at compile time.
var _ serpwatch.MetricsExtractor = (*MetricsExtractor)(nil)

// NoiseSelectors are removed from the document, in order, before the
// content region is located. The first group never holds readable content;
// the second is layout chrome that is dropped even though it may contain
// text, trading recall for precision.
var NoiseSelectors = []string{
	"script, style, noscript, iframe, svg, form",
	"header, footer, nav, aside",
}

// ContentMarkers are id and class values commonly used for the main
// content container.
var ContentMarkers = []string{
	"content",
	"main",
	"main-content",
	"post-body",
	"entry-content",
	"article-body",
}

// RegionRule locates a candidate primary content region in a document.
// Find returns nil or an empty selection when the rule does not apply.
type RegionRule struct {
	Name string
	Find func(doc *goquery.Document) *goquery.Selection
}

// DefaultRegionRules returns the content region cascade in precedence
// order: <main>, the first <article>, the first element marked with one of
// ContentMarkers, then <body>.
func DefaultRegionRules() []RegionRule {
	return []RegionRule{
		{Name: "main", Find: FirstElement("main")},
		{Name: "article", Find: FirstElement("article")},
		{Name: "marker", Find: MarkedElement(ContentMarkers)},
		{Name: "body", Find: FirstElement("body")},
	}
}

// FirstElement returns a rule finder matching the first element for selector.
func FirstElement(selector string) func(*goquery.Document) *goquery.Selection {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(selector).First()
	}
}

// MarkedElement returns a rule finder matching the first element, in
// document order, whose id or one of whose class names equals one of
// markers, ignoring case.
func MarkedElement(markers []string) func(*goquery.Document) *goquery.Selection {
	return func(doc *goquery.Document) *goquery.Selection {
		var found *goquery.Selection
		doc.Find("[id], [class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if hasMarker(sel, markers) {
				found = sel
				return false
			}
			return true
		})
		return found
	}
}

func hasMarker(sel *goquery.Selection, markers []string) bool {
	id, _ := sel.Attr("id")
	class, _ := sel.Attr("class")
	for _, m := range markers {
		if strings.EqualFold(strings.TrimSpace(id), m) {
			return true
		}
		for _, c := range strings.Fields(class) {
			if strings.EqualFold(c, m) {
				return true
			}
		}
	}
	return false
}

// StripNoise removes every element matching selectors from the document.
func StripNoise(doc *goquery.Document, selectors []string) {
	for _, s := range selectors {
		doc.Find(s).Remove()
	}
}

// LocateRegion applies rules in order and returns the first non-empty
// match with the name of the rule that produced it. When no rule matches,
// the whole document is returned under the name "document".
func LocateRegion(doc *goquery.Document, rules []RegionRule) (*goquery.Selection, string) {
	for _, r := range rules {
		if sel := r.Find(doc); sel != nil && sel.Length() > 0 {
			return sel, r.Name
		}
	}
	return doc.Selection, "document"
}

// MetricsExtractor measures the primary content region of HTML documents.
type MetricsExtractor struct {
	noise []string
	rules []RegionRule
}

// NewMetricsExtractor creates a MetricsExtractor using NoiseSelectors and
// DefaultRegionRules.
func NewMetricsExtractor() *MetricsExtractor {
	return &MetricsExtractor{
		noise: NoiseSelectors,
		rules: DefaultRegionRules(),
	}
}

// ExtractMetrics parses rawHTML and measures its primary content region.
// Internal links are only counted when domain is non-empty.
func (e *MetricsExtractor) ExtractMetrics(rawHTML string, domain string) (*serpwatch.ContentMetrics, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "failed to parse HTML: %v", err)
	}

	StripNoise(doc, e.noise)
	region, _ := LocateRegion(doc, e.rules)

	m := &serpwatch.ContentMetrics{
		CharCount:  countChars(Text(region)),
		Headings:   Headings(region),
		ImageCount: region.Find("img").Length(),
	}
	if domain != "" {
		m.InternalLinkCount = CountInternalLinks(region, domain)
	}
	return m, nil
}

// Text returns the visible text of the selection. Text nodes are trimmed
// and joined with single spaces so adjacent inline elements stay separate
// words.
func Text(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// countChars counts the characters of text other than ' ' and '\n'. Other
// whitespace, such as tabs or the ideographic space, counts.
func countChars(text string) int {
	n := 0
	for _, r := range text {
		if r != ' ' && r != '\n' {
			n++
		}
	}
	return n
}

// Headings returns the h1-h6 elements within the selection in document
// order. Text is flattened to one line and truncated to
// serpwatch.MaxHeadingLength characters; headings without text are skipped.
func Headings(sel *goquery.Selection) []serpwatch.Heading {
	headings := []serpwatch.Heading{}
	sel.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		text := strings.TrimSpace(strings.ReplaceAll(Text(h), "\n", " "))
		if text == "" {
			return
		}
		level, err := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(h), "h"))
		if err != nil {
			return
		}
		headings = append(headings, serpwatch.Heading{
			Level: level,
			Text:  serpwatch.Truncate(text, serpwatch.MaxHeadingLength),
		})
	})
	return headings
}

// CountInternalLinks counts anchors whose href contains domain or starts
// with "/". Root-relative links are internal by convention, which also
// includes protocol-relative "//host" links.
func CountInternalLinks(sel *goquery.Selection, domain string) int {
	count := 0
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if strings.Contains(href, domain) || strings.HasPrefix(href, "/") {
			count++
		}
	})
	return count
}
