package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source for session expiry.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newSessionStore(t *testing.T) (*sqlite.SessionStore, *clock) {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	c := &clock{now: time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)}
	store := sqlite.NewSessionStore(db)
	store.Now = c.Now
	return store, c
}

func fullSession(userID string) *serpwatch.Session {
	return &serpwatch.Session{
		UserID:  userID,
		Keyword: "widget",
		Rank:    7,
		OwnURL:  "https://mysite.com/widget",
		OwnMetrics: &serpwatch.ContentMetrics{
			CharCount:         1200,
			Headings:          []serpwatch.Heading{{Level: 2, Text: "Why widgets"}},
			ImageCount:        1,
			InternalLinkCount: 4,
		},
		CompetitorURL: "https://rival.example/widget",
		CompetitorMetrics: &serpwatch.ContentMetrics{
			CharCount: 3000,
			Headings:  []serpwatch.Heading{},
		},
		Gaps: []string{"add an FAQ", "add comparison table"},
	}
}

func TestSessionStore_SaveSession(t *testing.T) {
	t.Parallel()

	t.Run("round trips every field", func(t *testing.T) {
		t.Parallel()

		store, c := newSessionStore(t)
		ctx := context.Background()

		s := fullSession("u1")
		require.NoError(t, store.SaveSession(ctx, s))
		assert.Equal(t, c.now, s.CreatedAt)

		got, err := store.FindSession(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("stores absent metrics as absent", func(t *testing.T) {
		t.Parallel()

		store, _ := newSessionStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveSession(ctx, &serpwatch.Session{UserID: "u1", Keyword: "widget"}))

		got, err := store.FindSession(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, got.OwnMetrics)
		assert.Nil(t, got.CompetitorMetrics)
		assert.NotNil(t, got.Gaps)
		assert.Empty(t, got.Gaps)
	})

	t.Run("replaces the previous session of the user", func(t *testing.T) {
		t.Parallel()

		store, c := newSessionStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveSession(ctx, fullSession("u1")))

		c.now = c.now.Add(time.Hour)
		next := &serpwatch.Session{UserID: "u1", Keyword: "gadget", Rank: 12}
		require.NoError(t, store.SaveSession(ctx, next))

		got, err := store.FindSession(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "gadget", got.Keyword)
		assert.Equal(t, 12, got.Rank)
		assert.Nil(t, got.OwnMetrics)
		assert.Equal(t, c.now, got.CreatedAt)
	})

	t.Run("keeps users apart", func(t *testing.T) {
		t.Parallel()

		store, _ := newSessionStore(t)
		ctx := context.Background()

		a := fullSession("alice")
		b := fullSession("bob")
		b.Keyword = "gadget"
		require.NoError(t, store.SaveSession(ctx, a))
		require.NoError(t, store.SaveSession(ctx, b))

		got, err := store.FindSession(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "widget", got.Keyword)
	})

	t.Run("rejects invalid sessions", func(t *testing.T) {
		t.Parallel()

		store, _ := newSessionStore(t)

		err := store.SaveSession(context.Background(), &serpwatch.Session{Keyword: "widget"})

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})
}

func TestSessionStore_FindSession(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for unknown users", func(t *testing.T) {
		t.Parallel()

		store, _ := newSessionStore(t)

		_, err := store.FindSession(context.Background(), "nobody")

		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
	})

	t.Run("expires after the TTL", func(t *testing.T) {
		t.Parallel()

		store, c := newSessionStore(t)
		ctx := context.Background()
		require.NoError(t, store.SaveSession(ctx, fullSession("u1")))

		c.now = c.now.Add(serpwatch.DefaultSessionTTL - time.Second)
		_, err := store.FindSession(ctx, "u1")
		require.NoError(t, err)

		c.now = c.now.Add(time.Second)
		_, err = store.FindSession(ctx, "u1")
		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
	})

	t.Run("honors a custom TTL", func(t *testing.T) {
		t.Parallel()

		store, c := newSessionStore(t)
		store.TTL = time.Minute
		ctx := context.Background()
		require.NoError(t, store.SaveSession(ctx, fullSession("u1")))

		c.now = c.now.Add(2 * time.Minute)
		_, err := store.FindSession(ctx, "u1")

		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
	})
}

func TestSessionStore_DeleteExpiredSessions(t *testing.T) {
	t.Parallel()

	store, c := newSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, fullSession("old")))
	c.now = c.now.Add(12 * time.Hour)
	require.NoError(t, store.SaveSession(ctx, fullSession("recent")))

	c.now = c.now.Add(12 * time.Hour)
	n, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.FindSession(ctx, "recent")
	require.NoError(t, err)

	n, err = store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
