package sheets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/serpwatch"
)

// Range is the top-left corner of an A1 range.
type Range struct {
	// Sheet is the sheet name without quotes. Empty means the first sheet.
	Sheet string

	// Column is the 0-based index of the first column.
	Column int

	// Row is the 1-based number of the first row.
	Row int
}

// cellRange matches the part of an A1 range after the sheet. Sheets has at
// most 18278 columns (ZZZ), so longer letter runs are sheet names.
var cellRange = regexp.MustCompile(`^([A-Za-z]{1,3}[0-9]*|[0-9]+)(:([A-Za-z]{1,3}[0-9]*|[0-9]+))?$`)

// ParseRange parses ranges such as "Keywords!A2:B", "'My sheet'!C:D", "A:B"
// or a bare sheet name like "Keywords", which starts at A1. Sheet names that
// read as cells, such as "SEO", must be quoted.
func ParseRange(a1 string) (Range, error) {
	r := Range{Row: 1}
	ref := strings.TrimSpace(a1)
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		r.Sheet = unquoteSheet(ref[:i])
		ref = ref[i+1:]
	} else if !cellRange.MatchString(ref) {
		if r.Sheet = unquoteSheet(ref); r.Sheet == "" {
			return Range{}, serpwatch.Errorf(serpwatch.EINVALID, "invalid range %q: missing column", a1)
		}
		return r, nil
	}
	if j := strings.Index(ref, ":"); j >= 0 {
		ref = ref[:j]
	}
	ref = strings.ToUpper(ref)

	letters := 0
	for letters < len(ref) && ref[letters] >= 'A' && ref[letters] <= 'Z' {
		letters++
	}
	if letters == 0 {
		return Range{}, serpwatch.Errorf(serpwatch.EINVALID, "invalid range %q: missing column", a1)
	}
	col := 0
	for _, c := range ref[:letters] {
		col = col*26 + int(c-'A'+1)
	}
	r.Column = col - 1

	if digits := ref[letters:]; digits != "" {
		n := 0
		for _, c := range digits {
			if c < '0' || c > '9' {
				return Range{}, serpwatch.Errorf(serpwatch.EINVALID, "invalid range %q: bad row", a1)
			}
			n = n*10 + int(c-'0')
		}
		if n == 0 {
			return Range{}, serpwatch.Errorf(serpwatch.EINVALID, "invalid range %q: rows start at 1", a1)
		}
		r.Row = n
	}
	return r, nil
}

func unquoteSheet(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

// Cell returns the A1 reference of the cell offset columns to the right of
// the range's first column, on the rowth row of the range (1-based).
func (r Range) Cell(row, offset int) string {
	ref := fmt.Sprintf("%s%d", ColumnName(r.Column+offset), r.Row+row-1)
	if r.Sheet == "" {
		return ref
	}
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(r.Sheet, "'", "''"), ref)
}

// ColumnName returns the letters of the 0-based column index.
func ColumnName(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
