package gemini_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsker_Ask(t *testing.T) {
	t.Parallel()

	t.Run("grounds the prompt on the session", func(t *testing.T) {
		t.Parallel()

		client, got := newTestClient(t, "Add an FAQ.", http.StatusOK)
		s := &serpwatch.Session{
			UserID:            "u1",
			Keyword:           "widget",
			Rank:              7,
			OwnURL:            "https://mysite.com/widget",
			OwnMetrics:        &serpwatch.ContentMetrics{CharCount: 1200},
			CompetitorURL:     "https://rival.example/widget",
			CompetitorMetrics: &serpwatch.ContentMetrics{CharCount: 3000, ImageCount: 2},
			Gaps:              []string{"Add images"},
		}

		answer, err := gemini.NewAsker(client).Ask(context.Background(), "What should I fix first?", s)

		require.NoError(t, err)
		assert.Equal(t, "Add an FAQ.", answer)
		req := <-got
		assert.Contains(t, req.Prompt, "<analysis>")
		assert.Contains(t, req.Prompt, "Keyword: widget")
		assert.Contains(t, req.Prompt, "Competitor page: 3000 characters, 0 headings, 2 images")
		assert.Contains(t, req.Prompt, "- Add images")
		assert.Contains(t, req.Prompt, "Question: What should I fix first?")
	})

	t.Run("asks a general question without a session", func(t *testing.T) {
		t.Parallel()

		client, got := newTestClient(t, "Use descriptive titles.", http.StatusOK)

		_, err := gemini.NewAsker(client).Ask(context.Background(), "How do titles matter?", nil)

		require.NoError(t, err)
		req := <-got
		assert.NotContains(t, req.Prompt, "<analysis>")
		assert.Equal(t, "Question: How do titles matter?", req.Prompt)
	})

	t.Run("empty answer is unavailable", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, "", http.StatusOK)

		_, err := gemini.NewAsker(client).Ask(context.Background(), "anything?", nil)

		require.Error(t, err)
		assert.Equal(t, serpwatch.EUNAVAILABLE, serpwatch.ErrorCode(err))
	})

	t.Run("requires a question", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewAsker(nil).Ask(context.Background(), "  ", nil)

		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
		assert.Contains(t, serpwatch.ErrorMessage(err), "question required")
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "SEO expert")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.4, *config.Temperature, 0.001)
}
