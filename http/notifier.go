package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Discord webhook limits.
const (
	MaxMessageLength     = 2000
	DefaultNotifyTimeout = 20 * time.Second
)

// Ensure Notifier implements serpwatch.Notifier at compile time.
var _ serpwatch.Notifier = (*Notifier)(nil)

// Notifier posts messages to a Discord webhook. Messages longer than
// MaxMessageLength are sent as several posts, see SplitMessage.
type Notifier struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// NewNotifier creates a Notifier for the webhook URL. If client is nil,
// http.DefaultClient is used.
func NewNotifier(webhookURL string, client *http.Client) *Notifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{client: client, url: webhookURL, timeout: DefaultNotifyTimeout}
}

// Notify sends message, stopping at the first chunk that fails.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	for _, chunk := range SplitMessage(message, MaxMessageLength) {
		if err := n.post(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, content string) error {
	body, err := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: content})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return serpwatch.Errorf(serpwatch.EINVALID, "building webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return transportError(ctx, "webhook post", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return statusError("webhook post", resp)
	}
	return nil
}

// SplitMessage splits s into chunks of at most limit characters. Chunks
// break between "## " sections where possible, then between lines, and
// never inside a ``` fenced block that fits in one chunk. Lines longer than
// limit are hard-wrapped. An empty message yields no chunks.
func SplitMessage(s string, limit int) []string {
	var chunks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = nil
		}
	}
	add := func(piece []rune) {
		if len(cur)+len(piece) > limit {
			flush()
		}
		cur = append(cur, piece...)
	}

	for _, section := range sections(s) {
		if r := []rune(section); len(r) <= limit {
			add(r)
			continue
		}
		for _, block := range blocks(section) {
			if r := []rune(block); len(r) <= limit {
				add(r)
				continue
			}
			for _, line := range lines(block) {
				r := []rune(line)
				for len(r) > limit {
					flush()
					chunks = append(chunks, string(r[:limit]))
					r = r[limit:]
				}
				if len(r) > 0 {
					add(r)
				}
			}
		}
	}
	flush()
	return chunks
}

// lines splits s after each newline, dropping the empty tail.
func lines(s string) []string {
	out := strings.SplitAfter(s, "\n")
	if len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// sections splits s before every line starting with "## ".
func sections(s string) []string {
	var out []string
	var cur strings.Builder
	for _, line := range lines(s) {
		if strings.HasPrefix(line, "## ") && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// blocks splits s into single lines, keeping each ``` fenced block whole.
func blocks(s string) []string {
	var out []string
	var fence strings.Builder
	inFence := false
	for _, line := range lines(s) {
		isFence := strings.HasPrefix(strings.TrimSpace(line), "```")
		switch {
		case inFence:
			fence.WriteString(line)
			if isFence {
				out = append(out, fence.String())
				fence.Reset()
				inFence = false
			}
		case isFence:
			fence.WriteString(line)
			inFence = true
		default:
			out = append(out, line)
		}
	}
	if fence.Len() > 0 {
		out = append(out, fence.String())
	}
	return out
}
