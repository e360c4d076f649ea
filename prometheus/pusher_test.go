package prometheus_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushRequest struct {
	Method string
	Path   string
	Body   string
}

func newGateway(t *testing.T, status int) (*httptest.Server, <-chan pushRequest) {
	t.Helper()

	requests := make(chan pushRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- pushRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func summary() serpwatch.RunSummary {
	return serpwatch.RunSummary{
		RunID:              "run-1",
		Keywords:           12,
		Found:              9,
		Regressions:        2,
		Failures:           1,
		ExtractionFailures: 3,
		Duration:           90 * time.Second,
		FinishedAt:         time.Date(2026, 10, 19, 6, 1, 30, 0, time.UTC),
	}
}

func TestPusher_RecordRun(t *testing.T) {
	t.Parallel()

	t.Run("pushes every gauge under the job", func(t *testing.T) {
		t.Parallel()

		srv, requests := newGateway(t, http.StatusOK)
		p := prometheus.NewPusher(srv.URL, prometheus.WithClient(srv.Client()))

		err := p.RecordRun(context.Background(), summary())

		require.NoError(t, err)
		req := <-requests
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/metrics/job/serpwatch", req.Path)
		assert.Contains(t, req.Body, "serpwatch_run_keywords 12")
		assert.Contains(t, req.Body, "serpwatch_run_keywords_found 9")
		assert.Contains(t, req.Body, "serpwatch_run_regressions 2")
		assert.Contains(t, req.Body, "serpwatch_run_failures 1")
		assert.Contains(t, req.Body, "serpwatch_run_extraction_failures 3")
		assert.Contains(t, req.Body, "serpwatch_run_duration_seconds 90")
		assert.Contains(t, req.Body, "serpwatch_run_last_completion_timestamp_seconds 1.79238969e+09")
	})

	t.Run("uses the configured job and grouping", func(t *testing.T) {
		t.Parallel()

		srv, requests := newGateway(t, http.StatusAccepted)
		p := prometheus.NewPusher(srv.URL,
			prometheus.WithClient(srv.Client()),
			prometheus.WithJob("rank-check"),
			prometheus.WithGrouping("domain", "mysite.com"),
		)

		require.NoError(t, p.RecordRun(context.Background(), summary()))

		req := <-requests
		assert.Equal(t, "/metrics/job/rank-check/domain/mysite.com", req.Path)
	})

	t.Run("empty job keeps the default", func(t *testing.T) {
		t.Parallel()

		srv, requests := newGateway(t, http.StatusOK)
		p := prometheus.NewPusher(srv.URL, prometheus.WithClient(srv.Client()), prometheus.WithJob(""))

		require.NoError(t, p.RecordRun(context.Background(), summary()))

		req := <-requests
		assert.Equal(t, "/metrics/job/serpwatch", req.Path)
	})

	t.Run("gateway errors are unavailable", func(t *testing.T) {
		t.Parallel()

		srv, _ := newGateway(t, http.StatusInternalServerError)
		p := prometheus.NewPusher(srv.URL, prometheus.WithClient(srv.Client()))

		err := p.RecordRun(context.Background(), summary())

		assert.Equal(t, serpwatch.EUNAVAILABLE, serpwatch.ErrorCode(err))
	})

	t.Run("canceled context is returned unchanged", func(t *testing.T) {
		t.Parallel()

		srv, _ := newGateway(t, http.StatusOK)
		p := prometheus.NewPusher(srv.URL, prometheus.WithClient(srv.Client()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.RecordRun(ctx, summary())

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("gauges are gathered locally", func(t *testing.T) {
		t.Parallel()

		srv, _ := newGateway(t, http.StatusOK)
		p := prometheus.NewPusher(srv.URL, prometheus.WithClient(srv.Client()))
		require.NoError(t, p.RecordRun(context.Background(), summary()))

		families, err := p.Gatherer().Gather()

		require.NoError(t, err)
		assert.Len(t, families, 7)
	})
}
