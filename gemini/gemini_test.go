package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// request is what the fake Gemini endpoint received.
type request struct {
	Path   string
	Prompt string
	System string
}

// newTestClient returns a client talking to a fake endpoint that answers
// every request with text, or with an empty candidate list when text is "".
func newTestClient(t *testing.T, text string, status int) (*genai.Client, <-chan request) {
	t.Helper()

	got := make(chan request, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		_ = json.Unmarshal(body, &payload)
		req := request{Path: r.URL.Path}
		if len(payload.Contents) > 0 && len(payload.Contents[0].Parts) > 0 {
			req.Prompt = payload.Contents[0].Parts[0].Text
		}
		if len(payload.SystemInstruction.Parts) > 0 {
			req.System = payload.SystemInstruction.Parts[0].Text
		}
		got <- req

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		resp := map[string]any{"candidates": []any{}}
		if text != "" {
			resp["candidates"] = []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client, got
}
