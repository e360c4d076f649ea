package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure SessionStore implements serpwatch.SessionStore at compile time.
var _ serpwatch.SessionStore = (*SessionStore)(nil)

// SessionStore implements serpwatch.SessionStore using SQLite.
type SessionStore struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// TTL is how long a saved session stays visible.
	TTL time.Duration
}

// NewSessionStore creates a new SessionStore using serpwatch.DefaultSessionTTL.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{
		db:  db,
		Now: time.Now,
		TTL: serpwatch.DefaultSessionTTL,
	}
}

// SaveSession stores the session, replacing the user's previous one.
func (s *SessionStore) SaveSession(ctx context.Context, session *serpwatch.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	session.CreatedAt = s.Now().UTC().Truncate(time.Second)

	own, err := marshalNullable(session.OwnMetrics)
	if err != nil {
		return serpwatch.Errorf(serpwatch.EINTERNAL, "encoding own metrics: %v", err)
	}
	competitor, err := marshalNullable(session.CompetitorMetrics)
	if err != nil {
		return serpwatch.Errorf(serpwatch.EINTERNAL, "encoding competitor metrics: %v", err)
	}
	gaps := session.Gaps
	if gaps == nil {
		gaps = []string{}
	}
	gapsJSON, err := json.Marshal(gaps)
	if err != nil {
		return serpwatch.Errorf(serpwatch.EINTERNAL, "encoding gaps: %v", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, keyword, rank, own_url, own_metrics, competitor_url, competitor_metrics, gaps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			keyword = excluded.keyword,
			rank = excluded.rank,
			own_url = excluded.own_url,
			own_metrics = excluded.own_metrics,
			competitor_url = excluded.competitor_url,
			competitor_metrics = excluded.competitor_metrics,
			gaps = excluded.gaps,
			created_at = excluded.created_at
	`,
		session.UserID,
		session.Keyword,
		session.Rank,
		session.OwnURL,
		own,
		session.CompetitorURL,
		competitor,
		string(gapsJSON),
		formatTime(session.CreatedAt),
	)
	return err
}

// FindSession returns the user's session.
// Returns ENOTFOUND if there is none or it is older than TTL.
func (s *SessionStore) FindSession(ctx context.Context, userID string) (*serpwatch.Session, error) {
	var (
		session             serpwatch.Session
		own, competitor     sql.NullString
		gapsJSON, createdAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, keyword, rank, own_url, own_metrics, competitor_url, competitor_metrics, gaps, created_at
		FROM sessions
		WHERE user_id = ?
	`, userID).Scan(
		&session.UserID,
		&session.Keyword,
		&session.Rank,
		&session.OwnURL,
		&own,
		&session.CompetitorURL,
		&competitor,
		&gapsJSON,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, serpwatch.Errorf(serpwatch.ENOTFOUND, "no session for user %q", userID)
	}
	if err != nil {
		return nil, err
	}

	if session.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if !s.Now().Before(session.CreatedAt.Add(s.TTL)) {
		return nil, serpwatch.Errorf(serpwatch.ENOTFOUND, "session for user %q has expired", userID)
	}

	if session.OwnMetrics, err = unmarshalNullable[serpwatch.ContentMetrics](own, "own_metrics"); err != nil {
		return nil, err
	}
	if session.CompetitorMetrics, err = unmarshalNullable[serpwatch.ContentMetrics](competitor, "competitor_metrics"); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(gapsJSON), &session.Gaps); err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINTERNAL, "decoding gaps: %v", err)
	}

	return &session, nil
}

// DeleteExpiredSessions removes sessions older than TTL.
func (s *SessionStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	cutoff := formatTime(s.Now().Add(-s.TTL))
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
