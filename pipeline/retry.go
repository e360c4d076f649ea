package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/serpwatch"
)

// DefaultRetryDelays returns the backoff delays between attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFunc is called after a failed attempt, before waiting. attempt is
// the number of the attempt about to be made, starting at 2.
type RetryFunc func(attempt int, err error)

// Retry calls fn until it succeeds, making one attempt more than there are
// delays. Cancellation, deadline and EINVALID errors end the loop
// immediately since another attempt would fail the same way.
func Retry[T any](ctx context.Context, delays []time.Duration, onRetry RetryFunc, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt == len(delays) {
			break
		}
		if onRetry != nil {
			onRetry(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return zero, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return serpwatch.ErrorCode(err) != serpwatch.EINVALID
}
