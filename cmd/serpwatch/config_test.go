package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/serpwatch"
	main "github.com/fwojciec/serpwatch/cmd/serpwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env returns a getenv function backed by vars.
func env(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults without file or environment", func(t *testing.T) {
		t.Parallel()

		cfg, err := main.LoadConfig("", env(nil))

		require.NoError(t, err)
		assert.Equal(t, 10, cfg.TopN)
		assert.Equal(t, 2, cfg.Concurrency)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "api_key", cfg.Serp.KeyParam)
		assert.Equal(t, "q", cfg.Serp.QueryParam)
		assert.InDelta(t, 1.0, cfg.Serp.RequestsPerSecond, 0)
		assert.Equal(t, main.RendererBrowser, cfg.Render.Renderer)
		assert.Equal(t, "serpwatch/1.0 (+content-comparison)", cfg.Render.UserAgent)
		assert.Equal(t, 30*time.Second, cfg.Render.Timeout)
		assert.Equal(t, 5*time.Second, cfg.Render.IdleTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.DryRun)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "serpwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
domain: file.example
topN: 5
serp:
  endpoint: https://serp.example/search
  apiKey: file-key
render:
  renderer: static
  timeout: 10s
gemini:
  model: gemini-2.5-pro
`), 0644))

		cfg, err := main.LoadConfig(path, env(map[string]string{
			"OWN_DOMAIN":              "mysite.com",
			"SERP_API_KEY":            "env-key",
			"SERP_API_LOCATION_PARAM": "location",
			"SERP_API_LOCATION_VALUE": "Tokyo",
			"DRY_RUN":                 "yes",
		}))

		require.NoError(t, err)
		assert.Equal(t, "mysite.com", cfg.Domain)
		assert.Equal(t, 5, cfg.TopN)
		assert.Equal(t, "https://serp.example/search", cfg.Serp.Endpoint)
		assert.Equal(t, "env-key", cfg.Serp.APIKey)
		assert.Equal(t, "location", cfg.Serp.LocationParam)
		assert.Equal(t, "Tokyo", cfg.Serp.LocationValue)
		assert.Equal(t, main.RendererStatic, cfg.Render.Renderer)
		assert.Equal(t, 10*time.Second, cfg.Render.Timeout)
		assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
		assert.True(t, cfg.DryRun)
	})

	t.Run("file path from the environment", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "serpwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte("domain: file.example\n"), 0644))

		cfg, err := main.LoadConfig("", env(map[string]string{"SERPWATCH_CONFIG": path}))

		require.NoError(t, err)
		assert.Equal(t, "file.example", cfg.Domain)
	})

	t.Run("dry run accepts the usual spellings", func(t *testing.T) {
		t.Parallel()

		for v, want := range map[string]bool{"1": true, "TRUE": true, "on": true, "0": false, "nope": false} {
			cfg, err := main.LoadConfig("", env(map[string]string{"DRY_RUN": v}))
			require.NoError(t, err)
			assert.Equal(t, want, cfg.DryRun, v)
		}
	})

	t.Run("renderer is case-insensitive", func(t *testing.T) {
		t.Parallel()

		cfg, err := main.LoadConfig("", env(map[string]string{"SERPWATCH_RENDERER": "Static"}))

		require.NoError(t, err)
		assert.Equal(t, main.RendererStatic, cfg.Render.Renderer)
	})

	t.Run("unknown renderer is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig("", env(map[string]string{"SERPWATCH_RENDERER": "firefox"}))

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("non-numeric request rate is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig("", env(map[string]string{"SERP_API_REQUESTS_PER_SECOND": "fast"}))

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("missing file is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("malformed file is invalid", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "serpwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte("topN: [1, 2"), 0644))

		_, err := main.LoadConfig(path, env(nil))

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("reports every missing setting at once", func(t *testing.T) {
		t.Parallel()

		cfg := main.DefaultConfig()
		cfg.Serp.APIKey = "key"

		err := cfg.Validate("SERP_API_KEY", "SERP_API_ENDPOINT", "OWN_DOMAIN")

		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
		assert.Equal(t, "missing required settings: SERP_API_ENDPOINT, OWN_DOMAIN", serpwatch.ErrorMessage(err))
	})

	t.Run("passes when everything is set", func(t *testing.T) {
		t.Parallel()

		cfg := main.DefaultConfig()
		cfg.Domain = "mysite.com"
		cfg.Gemini.APIKey = "key"

		assert.NoError(t, cfg.Validate("OWN_DOMAIN", "GEMINI_API_KEY"))
	})
}
