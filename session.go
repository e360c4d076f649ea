package serpwatch

import (
	"context"
	"time"
)

// DefaultSessionTTL is how long an analysis stays usable as chat context.
const DefaultSessionTTL = 24 * time.Hour

// Session is the most recent analysis a user ran, kept so follow-up
// questions can refer to it.
type Session struct {
	UserID            string          `json:"userId"`
	Keyword           string          `json:"keyword"`
	Rank              int             `json:"rank"`
	OwnURL            string          `json:"ownUrl"`
	OwnMetrics        *ContentMetrics `json:"ownMetrics,omitempty"`
	CompetitorURL     string          `json:"competitorUrl,omitempty"`
	CompetitorMetrics *ContentMetrics `json:"competitorMetrics,omitempty"`
	Gaps              []string        `json:"gaps"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Validate returns an error if the session contains invalid fields.
func (s *Session) Validate() error {
	if s.UserID == "" {
		return Errorf(EINVALID, "session user ID required")
	}
	if s.Keyword == "" {
		return Errorf(EINVALID, "session keyword required")
	}
	return nil
}

// NewSession captures a keyword report as a user's session.
func NewSession(userID string, r *KeywordReport) *Session {
	s := &Session{
		UserID:            userID,
		Keyword:           r.Keyword,
		Rank:              r.Rank,
		OwnURL:            r.OwnURL,
		OwnMetrics:        r.OwnMetrics,
		CompetitorMetrics: r.CompetitorMetrics,
		Gaps:              r.Gaps,
	}
	if r.Benchmark != nil {
		s.CompetitorURL = r.Benchmark.URL
	}
	return s
}

// SessionStore persists one session per user.
type SessionStore interface {
	// SaveSession stores the session, replacing any previous one for the
	// same user. CreatedAt is set by the store.
	SaveSession(ctx context.Context, s *Session) error

	// FindSession returns the user's session.
	// Returns ENOTFOUND if there is none or it has expired.
	FindSession(ctx context.Context, userID string) (*Session, error)

	// DeleteExpiredSessions removes expired sessions and returns how many
	// were removed.
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// Asker answers free-form SEO questions.
type Asker interface {
	// Ask answers question, grounding the answer on s when it is non-nil.
	Ask(ctx context.Context, question string, s *Session) (string, error)
}
