package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.SessionStore = (*SessionStore)(nil)

// SessionStore is a mock implementation of serpwatch.SessionStore.
type SessionStore struct {
	SaveSessionFn           func(ctx context.Context, s *serpwatch.Session) error
	FindSessionFn           func(ctx context.Context, userID string) (*serpwatch.Session, error)
	DeleteExpiredSessionsFn func(ctx context.Context) (int, error)
}

func (s *SessionStore) SaveSession(ctx context.Context, session *serpwatch.Session) error {
	return s.SaveSessionFn(ctx, session)
}

func (s *SessionStore) FindSession(ctx context.Context, userID string) (*serpwatch.Session, error) {
	return s.FindSessionFn(ctx, userID)
}

func (s *SessionStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	return s.DeleteExpiredSessionsFn(ctx)
}

var _ serpwatch.Asker = (*Asker)(nil)

// Asker is a mock implementation of serpwatch.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string, s *serpwatch.Session) (string, error)
}

func (a *Asker) Ask(ctx context.Context, question string, s *serpwatch.Session) (string, error) {
	return a.AskFn(ctx, question, s)
}
