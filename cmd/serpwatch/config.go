package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/pipeline"
	"github.com/fwojciec/serpwatch/rod"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	configPathEnv         = "SERPWATCH_CONFIG"
	serviceAccountEnv     = "GOOGLE_SERVICE_ACCOUNT_JSON"
	spreadsheetIDEnv      = "GOOGLE_SHEETS_SPREADSHEET_ID"
	sheetsRangeEnv        = "GOOGLE_SHEETS_RANGE"
	serpAPIKeyEnv         = "SERP_API_KEY"
	serpEndpointEnv       = "SERP_API_ENDPOINT"
	serpKeyParamEnv       = "SERP_API_KEY_PARAM"
	serpQueryParamEnv     = "SERP_API_QUERY_PARAM"
	serpLocationParamEnv  = "SERP_API_LOCATION_PARAM"
	serpLocationValueEnv  = "SERP_API_LOCATION_VALUE"
	serpLanguageParamEnv  = "SERP_API_LANGUAGE_PARAM"
	serpLanguageValueEnv  = "SERP_API_LANGUAGE_VALUE"
	ownDomainEnv          = "OWN_DOMAIN"
	geminiAPIKeyEnv       = "GEMINI_API_KEY"
	geminiModelEnv        = "GEMINI_MODEL"
	discordWebhookEnv     = "DISCORD_WEBHOOK_URL"
	logPathEnv            = "LOG_PATH"
	logLevelEnv           = "LOG_LEVEL"
	dryRunEnv             = "DRY_RUN"
	dbPathEnv             = "SERPWATCH_DB"
	rendererEnv           = "SERPWATCH_RENDERER"
	pushgatewayURLEnv     = "PUSHGATEWAY_URL"
	serpRequestsPerSecEnv = "SERP_API_REQUESTS_PER_SECOND"
)

// Renderers accepted by the renderer setting.
const (
	RendererBrowser = "browser"
	RendererStatic  = "static"
)

// Config holds every setting of the program.
type Config struct {
	Domain      string        `yaml:"domain"`
	TopN        int           `yaml:"topN"`
	Concurrency int           `yaml:"concurrency"`
	DryRun      bool          `yaml:"dryRun"`
	DBPath      string        `yaml:"db"`
	SessionTTL  time.Duration `yaml:"sessionTTL"`

	Sheets      SheetsConfig      `yaml:"sheets"`
	Serp        SerpConfig        `yaml:"serp"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Discord     DiscordConfig     `yaml:"discord"`
	Render      RenderConfig      `yaml:"render"`
	Log         LogConfig         `yaml:"log"`
	Pushgateway PushgatewayConfig `yaml:"pushgateway"`
}

// SheetsConfig locates the keyword spreadsheet.
type SheetsConfig struct {
	// CredentialsFile is the path of a service account JSON key.
	CredentialsFile string `yaml:"credentialsFile"`
	SpreadsheetID   string `yaml:"spreadsheetId"`
	Range           string `yaml:"range"`
}

// SerpConfig describes the ranked-results API.
type SerpConfig struct {
	APIKey            string  `yaml:"apiKey"`
	Endpoint          string  `yaml:"endpoint"`
	KeyParam          string  `yaml:"keyParam"`
	QueryParam        string  `yaml:"queryParam"`
	LocationParam     string  `yaml:"locationParam"`
	LocationValue     string  `yaml:"locationValue"`
	LanguageParam     string  `yaml:"languageParam"`
	LanguageValue     string  `yaml:"languageValue"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// GeminiConfig describes the generative model.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// DiscordConfig describes the notification webhook.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// RenderConfig describes page rendering.
type RenderConfig struct {
	// Renderer is RendererBrowser or RendererStatic.
	Renderer     string        `yaml:"renderer"`
	UserAgent    string        `yaml:"userAgent"`
	Timeout      time.Duration `yaml:"timeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	RecycleAfter int64         `yaml:"recycleAfter"`
}

// LogConfig describes logging output.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// PushgatewayConfig describes the metrics push gateway. Pushing is
// disabled when URL is empty.
type PushgatewayConfig struct {
	URL string `yaml:"url"`
	Job string `yaml:"job"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		TopN:        serpwatch.DefaultTopN,
		Concurrency: pipeline.DefaultConcurrency,
		SessionTTL:  serpwatch.DefaultSessionTTL,
		Serp: SerpConfig{
			KeyParam:          "api_key",
			QueryParam:        "q",
			RequestsPerSecond: 1,
		},
		Render: RenderConfig{
			Renderer:     RendererBrowser,
			UserAgent:    rod.DefaultUserAgent,
			Timeout:      rod.DefaultFetchTimeout,
			IdleTimeout:  rod.DefaultIdleTimeout,
			RecycleAfter: rod.DefaultMaxPages,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path, if any, over the defaults and then
// applies environment overrides. When path is empty the SERPWATCH_CONFIG
// variable is consulted.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "cannot read config %s: %v", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "cannot parse config %s: %v", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}

	str(serviceAccountEnv, &c.Sheets.CredentialsFile)
	str(spreadsheetIDEnv, &c.Sheets.SpreadsheetID)
	str(sheetsRangeEnv, &c.Sheets.Range)
	str(serpAPIKeyEnv, &c.Serp.APIKey)
	str(serpEndpointEnv, &c.Serp.Endpoint)
	str(serpKeyParamEnv, &c.Serp.KeyParam)
	str(serpQueryParamEnv, &c.Serp.QueryParam)
	str(serpLocationParamEnv, &c.Serp.LocationParam)
	str(serpLocationValueEnv, &c.Serp.LocationValue)
	str(serpLanguageParamEnv, &c.Serp.LanguageParam)
	str(serpLanguageValueEnv, &c.Serp.LanguageValue)
	str(ownDomainEnv, &c.Domain)
	str(geminiAPIKeyEnv, &c.Gemini.APIKey)
	str(geminiModelEnv, &c.Gemini.Model)
	str(discordWebhookEnv, &c.Discord.WebhookURL)
	str(logPathEnv, &c.Log.Path)
	str(logLevelEnv, &c.Log.Level)
	str(dbPathEnv, &c.DBPath)
	str(rendererEnv, &c.Render.Renderer)
	str(pushgatewayURLEnv, &c.Pushgateway.URL)

	if v := strings.TrimSpace(getenv(dryRunEnv)); v != "" {
		c.DryRun = parseBool(v)
	}
	if v := strings.TrimSpace(getenv(serpRequestsPerSecEnv)); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return serpwatch.Errorf(serpwatch.EINVALID, "%s must be a number, got %q", serpRequestsPerSecEnv, v)
		}
		c.Serp.RequestsPerSecond = rps
	}

	c.Render.Renderer = strings.ToLower(c.Render.Renderer)
	if c.Render.Renderer != RendererBrowser && c.Render.Renderer != RendererStatic {
		return serpwatch.Errorf(serpwatch.EINVALID, "%s must be %q or %q, got %q",
			rendererEnv, RendererBrowser, RendererStatic, c.Render.Renderer)
	}
	return nil
}

// parseBool accepts the usual spellings of true; anything else is false.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate reports every required setting that is empty in a single
// EINVALID error. Settings are named by their environment variable.
func (c *Config) Validate(required ...string) error {
	values := map[string]string{
		serviceAccountEnv: c.Sheets.CredentialsFile,
		spreadsheetIDEnv:  c.Sheets.SpreadsheetID,
		sheetsRangeEnv:    c.Sheets.Range,
		serpAPIKeyEnv:     c.Serp.APIKey,
		serpEndpointEnv:   c.Serp.Endpoint,
		ownDomainEnv:      c.Domain,
		geminiAPIKeyEnv:   c.Gemini.APIKey,
		discordWebhookEnv: c.Discord.WebhookURL,
	}

	var missing []string
	for _, name := range required {
		v, ok := values[name]
		if !ok {
			panic(fmt.Sprintf("unknown required setting %q", name))
		}
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return serpwatch.Errorf(serpwatch.EINVALID, "missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
