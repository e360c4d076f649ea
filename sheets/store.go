// Package sheets implements the keyword source and rank write-back on top
// of the Google Sheets API.
package sheets

import (
	"context"
	"fmt"

	"github.com/fwojciec/serpwatch"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	_ serpwatch.KeywordSource = (*Store)(nil)
	_ serpwatch.RankWriter    = (*Store)(nil)
)

// rankOffset is the column of the rank relative to the keyword column.
const rankOffset = 1

// Store reads keywords from, and writes ranks to, a range of a spreadsheet.
// The first column of the range holds keywords, the second the last rank.
type Store struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	origin        Range
}

// NewStore creates a Store for readRange of the spreadsheet. Client
// options carry credentials, e.g. option.WithCredentialsFile.
func NewStore(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "spreadsheet ID required")
	}
	origin, err := ParseRange(readRange)
	if err != nil {
		return nil, err
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &Store{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		origin:        origin,
	}, nil
}

// LoadKeywords reads the range and parses it into keyword entries.
func (s *Store) LoadKeywords(ctx context.Context) ([]serpwatch.KeywordEntry, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EUNAVAILABLE, "reading keyword range %q: %v", s.readRange, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return serpwatch.ParseKeywordRows(rows), nil
}

// WriteRanks writes every update into the rank column of its row in a
// single batch request.
func (s *Store) WriteRanks(ctx context.Context, updates []serpwatch.RankUpdate) error {
	req := BatchRequest(s.origin, updates)
	if len(req.Data) == 0 {
		return nil
	}
	if _, err := s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return serpwatch.Errorf(serpwatch.EUNAVAILABLE, "writing %d ranks: %v", len(req.Data), err)
	}
	return nil
}

// BatchRequest builds the value updates for updates relative to origin.
// Updates without a row or rank are skipped.
func BatchRequest(origin Range, updates []serpwatch.RankUpdate) *sheets.BatchUpdateValuesRequest {
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW"}
	for _, u := range updates {
		if u.Row <= 0 || u.Rank <= 0 {
			continue
		}
		req.Data = append(req.Data, &sheets.ValueRange{
			Range:  origin.Cell(u.Row, rankOffset),
			Values: [][]interface{}{{u.Rank}},
		})
	}
	return req
}
