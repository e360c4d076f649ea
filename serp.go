package serpwatch

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxCompetitors caps the number of competitor entries kept per keyword.
const MaxCompetitors = 10

// RawResult is one organic entry as returned by a ranked-results provider.
// Field names vary between providers; see NormalizeResult.
type RawResult map[string]any

// RankedResult is a normalized provider entry.
type RankedResult struct {
	// Position is the provider's 1-based position. Zero means the provider
	// did not report one.
	Position int    `json:"position,omitempty"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// SerpOutcome is the ranking of the tracked domain for one keyword.
type SerpOutcome struct {
	Keyword string `json:"keyword"`

	// Rank is the position of the first entry whose URL contains the tracked
	// domain. Zero means the domain was not found.
	Rank int `json:"rank,omitempty"`

	// OwnURL is the URL of the entry that fixed Rank.
	OwnURL string `json:"ownUrl,omitempty"`

	// Competitors holds up to MaxCompetitors entries not belonging to the
	// tracked domain, in provider order.
	Competitors []RankedResult `json:"competitors"`
}

// Found reports whether the tracked domain appears in the results.
func (o *SerpOutcome) Found() bool {
	return o != nil && o.Rank > 0
}

// RankProvider retrieves ranked search results for a keyword.
type RankProvider interface {
	// FetchResults returns the provider's organic results in rank order.
	// Returns ETIMEOUT when the provider does not answer in time and
	// EUNAVAILABLE on a non-success status.
	FetchResults(ctx context.Context, keyword string) ([]RawResult, error)
}

// Field aliases in precedence order.
var (
	urlFields      = []string{"link", "url"}
	positionFields = []string{"position", "rank"}
	snippetFields  = []string{"snippet", "description"}
)

// NormalizeResult converts a provider entry into a RankedResult.
//
// Aliases are resolved in a fixed order: "link" before "url", "position"
// before "rank", "snippet" before "description". An alias is skipped when
// its value is missing, empty or, for positions, not a positive integer.
func NormalizeResult(raw RawResult) RankedResult {
	return RankedResult{
		Position: firstPosition(raw, positionFields),
		URL:      firstString(raw, urlFields),
		Title:    firstString(raw, []string{"title"}),
		Snippet:  firstString(raw, snippetFields),
	}
}

func firstString(raw RawResult, fields []string) string {
	for _, f := range fields {
		if s, ok := raw[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstPosition(raw RawResult, fields []string) int {
	for _, f := range fields {
		if n := toPosition(raw[f]); n > 0 {
			return n
		}
	}
	return 0
}

// toPosition converts JSON-decoded numeric values to a positive int.
// Returns 0 for anything that is not a positive whole number.
func toPosition(v any) int {
	switch n := v.(type) {
	case int:
		return max(n, 0)
	case int64:
		return max(int(n), 0)
	case float64:
		if n <= 0 || n != math.Trunc(n) {
			return 0
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return max(int(i), 0)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return max(i, 0)
	}
	return 0
}

// ParseSerpPayload decodes a provider response body and returns its organic
// results. The list is read from "organic_results", falling back to
// "organic". A payload with neither yields an empty list.
func ParseSerpPayload(body []byte) ([]RawResult, error) {
	var payload struct {
		OrganicResults []RawResult `json:"organic_results"`
		Organic        []RawResult `json:"organic"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, Errorf(EINVALID, "failed to decode ranked results: %v", err)
	}
	if len(payload.OrganicResults) > 0 {
		return payload.OrganicResults, nil
	}
	return payload.Organic, nil
}

// ExtractRank normalizes raw provider results and locates the tracked domain.
//
// The first entry whose URL contains domain fixes Rank and OwnURL; later
// matches are ignored. When that entry carries no position, its 1-based
// index in the list is used instead. Competitors are the entries whose URL
// does not contain domain, truncated to MaxCompetitors in provider order.
// An empty domain matches nothing.
func ExtractRank(keyword string, raw []RawResult, domain string) *SerpOutcome {
	outcome := &SerpOutcome{
		Keyword:     keyword,
		Competitors: []RankedResult{},
	}

	for i, r := range raw {
		result := NormalizeResult(r)
		if isOwn(result.URL, domain) {
			if outcome.Rank == 0 {
				outcome.Rank = result.Position
				if outcome.Rank == 0 {
					outcome.Rank = i + 1
				}
				outcome.OwnURL = result.URL
			}
			continue
		}
		if len(outcome.Competitors) < MaxCompetitors {
			outcome.Competitors = append(outcome.Competitors, result)
		}
	}

	return outcome
}

func isOwn(url, domain string) bool {
	return domain != "" && url != "" && strings.Contains(url, domain)
}
