package serpwatch

import (
	"strconv"
	"strings"
)

// ParseKeywordRows converts tabular rows of (keyword, previous rank) into
// keyword entries.
//
// The first row is treated as a header and skipped when any of its cells is
// "keyword" (case-insensitive). Rows without a keyword are skipped. The
// previous rank is only read from cells made of ASCII digits; anything else
// leaves it unknown. Row holds the 1-based row number within rows.
func ParseKeywordRows(rows [][]string) []KeywordEntry {
	if len(rows) == 0 {
		return nil
	}

	start := 0
	for _, cell := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(cell), "keyword") {
			start = 1
			break
		}
	}

	var entries []KeywordEntry
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		keyword := strings.TrimSpace(row[0])
		if keyword == "" {
			continue
		}
		entry := KeywordEntry{Keyword: keyword, Row: i + 1}
		if len(row) > 1 {
			entry.PreviousRank = parseRank(row[1])
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseRank(cell string) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}
	for _, r := range cell {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0
	}
	return n
}
