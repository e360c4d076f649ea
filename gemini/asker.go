package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/serpwatch"
	"google.golang.org/genai"
)

// Ensure Asker implements serpwatch.Asker at compile time.
var _ serpwatch.Asker = (*Asker)(nil)

const expertInstruction = "You are an SEO expert. Answer concisely. When analysis data is provided, " +
	"ground the answer on it and say so if the data does not cover the question."

// Asker answers SEO questions, optionally grounded on a stored session.
type Asker struct {
	gen generator
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, opts ...Option) *Asker {
	return &Asker{gen: newGenerator(client, opts)}
}

// Ask answers question. With a session the prompt carries the session's
// analysis; without one it is a general question.
func (a *Asker) Ask(ctx context.Context, question string, s *serpwatch.Session) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", serpwatch.Errorf(serpwatch.EINVALID, "question required")
	}
	text, err := a.gen.generate(ctx, BuildQuestionPrompt(question, s), BuildConfig())
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", serpwatch.Errorf(serpwatch.EUNAVAILABLE, "gemini returned no answer")
	}
	return text, nil
}

// BuildConfig returns the generation config for question answering.
func BuildConfig() *genai.GenerateContentConfig {
	return config(expertInstruction, 0.4)
}

// BuildQuestionPrompt builds the user prompt for question, embedding the
// session's analysis when s is non-nil.
func BuildQuestionPrompt(question string, s *serpwatch.Session) string {
	if s == nil {
		return fmt.Sprintf("Question: %s", question)
	}

	var sb strings.Builder
	sb.WriteString("<analysis>\n")
	fmt.Fprintf(&sb, "Keyword: %s\n", s.Keyword)
	if s.Rank > 0 {
		fmt.Fprintf(&sb, "Rank: %d\n", s.Rank)
	}
	fmt.Fprintf(&sb, "Tracked URL: %s\n", s.OwnURL)
	writeMetrics(&sb, "Tracked page", s.OwnMetrics)
	if s.CompetitorURL != "" {
		fmt.Fprintf(&sb, "Competitor URL: %s\n", s.CompetitorURL)
	}
	writeMetrics(&sb, "Competitor page", s.CompetitorMetrics)
	if len(s.Gaps) > 0 {
		sb.WriteString("Suggested actions:\n")
		for _, g := range s.Gaps {
			fmt.Fprintf(&sb, "- %s\n", g)
		}
	}
	sb.WriteString("</analysis>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

func writeMetrics(sb *strings.Builder, label string, m *serpwatch.ContentMetrics) {
	if m == nil {
		return
	}
	fmt.Fprintf(sb, "%s: %d characters, %d headings, %d images, %d internal links\n",
		label, m.CharCount, len(m.Headings), m.ImageCount, m.InternalLinkCount)
}
