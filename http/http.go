// Package http implements serpwatch collaborators that talk plain HTTP:
// the ranked-results provider, the Discord webhook notifier and a static
// page fetcher.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/serpwatch"
)

// maxErrorBody is how much of a failed response body is kept in errors.
const maxErrorBody = 512

// transportError classifies a failed round trip. Deadline errors become
// ETIMEOUT so callers can tell a hung provider from a refusing one;
// cancellation is returned unchanged.
func transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	var te interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		return serpwatch.Errorf(serpwatch.ETIMEOUT, "%s timed out: %v", op, err)
	}
	return serpwatch.Errorf(serpwatch.EUNAVAILABLE, "%s failed: %v", op, err)
}

// statusError turns a non-2xx response into an EUNAVAILABLE error carrying
// the start of the response body.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("%s: HTTP %d", op, resp.StatusCode)
	if len(body) > 0 {
		msg += ": " + string(body)
	}
	return serpwatch.Errorf(serpwatch.EUNAVAILABLE, "%s", msg)
}

func success(code int) bool {
	return code >= 200 && code < 300
}
