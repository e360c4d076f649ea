package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/serpwatch"
)

// DefaultRankTimeout bounds a single ranked-results request.
const DefaultRankTimeout = 30 * time.Second

// Ensure RankProvider implements serpwatch.RankProvider at compile time.
var _ serpwatch.RankProvider = (*RankProvider)(nil)

// RankParams names the query parameters of a ranked-results API. Optional
// parameters are only sent when both name and value are set.
type RankParams struct {
	KeyParam      string
	QueryParam    string
	LocationParam string
	LocationValue string
	LanguageParam string
	LanguageValue string
}

// DefaultRankParams matches SerpApi-style endpoints.
var DefaultRankParams = RankParams{
	KeyParam:   "api_key",
	QueryParam: "q",
}

// RankProvider fetches ranked search results with a GET request to a
// configurable endpoint and decodes the JSON payload.
type RankProvider struct {
	client   *http.Client
	endpoint string
	apiKey   string
	params   RankParams
	timeout  time.Duration
}

// RankOption configures a RankProvider.
type RankOption func(*RankProvider)

// WithRankParams sets the query parameter names.
func WithRankParams(p RankParams) RankOption {
	return func(r *RankProvider) {
		r.params = p
	}
}

// WithRankTimeout sets the per-request timeout.
func WithRankTimeout(d time.Duration) RankOption {
	return func(r *RankProvider) {
		r.timeout = d
	}
}

// WithRankClient sets the HTTP client used for requests.
func WithRankClient(c *http.Client) RankOption {
	return func(r *RankProvider) {
		r.client = c
	}
}

// NewRankProvider creates a RankProvider for endpoint authenticated with apiKey.
func NewRankProvider(endpoint, apiKey string, opts ...RankOption) *RankProvider {
	r := &RankProvider{
		client:   http.DefaultClient,
		endpoint: endpoint,
		apiKey:   apiKey,
		params:   DefaultRankParams,
		timeout:  DefaultRankTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchResults returns the organic results for keyword in provider order.
func (r *RankProvider) FetchResults(ctx context.Context, keyword string) ([]serpwatch.RawResult, error) {
	u, err := r.requestURL(keyword)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "building ranked results request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, "ranked results request", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, statusError("ranked results request", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, "reading ranked results", err)
	}
	return serpwatch.ParseSerpPayload(body)
}

func (r *RankProvider) requestURL(keyword string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil || u.Host == "" {
		return "", serpwatch.Errorf(serpwatch.EINVALID, "invalid ranked results endpoint %q", r.endpoint)
	}
	q := u.Query()
	q.Set(r.params.KeyParam, r.apiKey)
	q.Set(r.params.QueryParam, keyword)
	if r.params.LocationParam != "" && r.params.LocationValue != "" {
		q.Set(r.params.LocationParam, r.params.LocationValue)
	}
	if r.params.LanguageParam != "" && r.params.LanguageValue != "" {
		q.Set(r.params.LanguageParam, r.params.LanguageValue)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
