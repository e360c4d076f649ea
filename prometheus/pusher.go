// Package prometheus publishes batch run metrics to a Prometheus push gateway.
package prometheus

import (
	"context"
	"net/http"

	"github.com/fwojciec/serpwatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

// Ensure Pusher implements serpwatch.RunRecorder at compile time.
var _ serpwatch.RunRecorder = (*Pusher)(nil)

// DefaultJob is the push gateway job name.
const DefaultJob = "serpwatch"

// Pusher records run summaries as gauges and pushes them to a gateway.
// Each push replaces the metrics of the previous run for the same grouping.
type Pusher struct {
	url      string
	job      string
	grouping map[string]string
	client   push.HTTPDoer

	registry           *prometheus.Registry
	keywords           prometheus.Gauge
	found              prometheus.Gauge
	regressions        prometheus.Gauge
	failures           prometheus.Gauge
	extractionFailures prometheus.Gauge
	duration           prometheus.Gauge
	lastCompletion     prometheus.Gauge
}

// Option configures a Pusher.
type Option func(*Pusher)

// WithJob sets the job name. Empty values are ignored.
func WithJob(job string) Option {
	return func(p *Pusher) {
		if job != "" {
			p.job = job
		}
	}
}

// WithGrouping adds a grouping label to the pushed metrics.
func WithGrouping(name, value string) Option {
	return func(p *Pusher) {
		p.grouping[name] = value
	}
}

// WithClient sets the HTTP client used for pushing.
func WithClient(c *http.Client) Option {
	return func(p *Pusher) {
		p.client = c
	}
}

// NewPusher creates a Pusher for the gateway at url.
func NewPusher(url string, opts ...Option) *Pusher {
	p := &Pusher{
		url:      url,
		job:      DefaultJob,
		grouping: map[string]string{},
		client:   http.DefaultClient,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}

	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "serpwatch",
			Subsystem: "run",
			Name:      name,
			Help:      help,
		})
		p.registry.MustRegister(g)
		return g
	}
	p.keywords = gauge("keywords", "Keywords checked in the last run.")
	p.found = gauge("keywords_found", "Keywords where the tracked domain ranked in the last run.")
	p.regressions = gauge("regressions", "Keywords reported as regressed in the last run.")
	p.failures = gauge("failures", "Keywords whose check failed in the last run.")
	p.extractionFailures = gauge("extraction_failures", "Page measurements that degraded to zero metrics in the last run.")
	p.duration = gauge("duration_seconds", "Duration of the last run.")
	p.lastCompletion = gauge("last_completion_timestamp_seconds", "Unix time the last run finished.")
	return p
}

// Gatherer returns the registry holding the run gauges.
func (p *Pusher) Gatherer() prometheus.Gatherer {
	return p.registry
}

// RecordRun sets the gauges from s and pushes them to the gateway.
func (p *Pusher) RecordRun(ctx context.Context, s serpwatch.RunSummary) error {
	p.keywords.Set(float64(s.Keywords))
	p.found.Set(float64(s.Found))
	p.regressions.Set(float64(s.Regressions))
	p.failures.Set(float64(s.Failures))
	p.extractionFailures.Set(float64(s.ExtractionFailures))
	p.duration.Set(s.Duration.Seconds())
	if !s.FinishedAt.IsZero() {
		p.lastCompletion.Set(float64(s.FinishedAt.Unix()))
	}

	pusher := push.New(p.url, p.job).
		Gatherer(p.registry).
		Client(p.client).
		Format(expfmt.NewFormat(expfmt.TypeTextPlain))
	for name, value := range p.grouping {
		pusher = pusher.Grouping(name, value)
	}

	if err := pusher.PushContext(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return serpwatch.Errorf(serpwatch.EUNAVAILABLE, "pushing run metrics: %v", err)
	}
	return nil
}
