// Package gemini implements gap analysis and SEO question answering on top
// of the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
	"google.golang.org/genai"
)

// Defaults for model calls.
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

// generator is the shared call path of Analyzer and Asker.
type generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// generate sends a single-turn prompt and returns the text of the first
// candidate. A response without candidates yields an empty string.
func (g *generator) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", serpwatch.Errorf(serpwatch.ETIMEOUT, "gemini request timed out after %s", g.timeout)
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", serpwatch.Errorf(serpwatch.EUNAVAILABLE, "gemini request failed: %v", err)
	}
	return FirstCandidateText(result), nil
}

// FirstCandidateText joins the text parts of the first candidate.
func FirstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func config(system string, temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature: &temperature,
	}
}

// Option configures an Analyzer or an Asker.
type Option func(*generator)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(g *generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *generator) {
		g.timeout = d
	}
}

func newGenerator(client *genai.Client, opts []Option) generator {
	g := generator{client: client, model: DefaultModel, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}
