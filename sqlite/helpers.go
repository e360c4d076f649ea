package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// formatTime formats t in UTC so stored timestamps sort as strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// marshalNullable encodes v as JSON, storing NULL for a nil pointer.
func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalNullable decodes a JSON column, returning nil for NULL.
func unmarshalNullable[T any](s sql.NullString, fieldName string) (*T, error) {
	if !s.Valid {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fieldName, err)
	}
	return &v, nil
}
