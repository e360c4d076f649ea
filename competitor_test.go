package serpwatch_test

import (
	"testing"

	"github.com/fwojciec/serpwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCompetitor(t *testing.T) {
	t.Parallel()

	t.Run("selects the entry one position above the tracked rank", func(t *testing.T) {
		t.Parallel()

		competitors := []serpwatch.RankedResult{
			{Position: 1, URL: "https://a.example"},
			{Position: 2, URL: "https://b.example"},
			{Position: 4, URL: "https://d.example"},
		}

		got, ok := serpwatch.SelectCompetitor(competitors, 3)

		require.True(t, ok)
		assert.Equal(t, 2, got.Position)
		assert.Equal(t, "https://b.example", got.URL)
	})

	t.Run("falls back to the first entry when tracked page is first", func(t *testing.T) {
		t.Parallel()

		competitors := []serpwatch.RankedResult{
			{Position: 2, URL: "https://b.example"},
			{Position: 3, URL: "https://c.example"},
		}

		got, ok := serpwatch.SelectCompetitor(competitors, 1)

		require.True(t, ok)
		assert.Equal(t, 2, got.Position)
	})

	t.Run("falls back to the first entry on a position gap", func(t *testing.T) {
		t.Parallel()

		competitors := []serpwatch.RankedResult{
			{Position: 1, URL: "https://a.example"},
			{Position: 5, URL: "https://e.example"},
		}

		got, ok := serpwatch.SelectCompetitor(competitors, 4)

		require.True(t, ok)
		assert.Equal(t, "https://a.example", got.URL)
	})

	t.Run("first exact match wins", func(t *testing.T) {
		t.Parallel()

		competitors := []serpwatch.RankedResult{
			{Position: 1, URL: "https://a.example"},
			{Position: 6, URL: "https://first.example"},
			{Position: 6, URL: "https://second.example"},
		}

		got, ok := serpwatch.SelectCompetitor(competitors, 7)

		require.True(t, ok)
		assert.Equal(t, "https://first.example", got.URL)
	})

	t.Run("unknown positions never match a target of zero", func(t *testing.T) {
		t.Parallel()

		competitors := []serpwatch.RankedResult{
			{URL: "https://a.example"},
			{Position: 0, URL: "https://b.example"},
		}

		got, ok := serpwatch.SelectCompetitor(competitors, 1)

		require.True(t, ok)
		assert.Equal(t, "https://a.example", got.URL)
	})

	t.Run("no competitors selects nothing", func(t *testing.T) {
		t.Parallel()

		_, ok := serpwatch.SelectCompetitor(nil, 3)

		assert.False(t, ok)
	})
}
