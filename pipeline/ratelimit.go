package pipeline

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces calls that share a key.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

var _ Limiter = (*KeyLimiter)(nil)

// KeyLimiter keeps one token bucket per key, so calls to different hosts
// or providers proceed independently while calls sharing a key are spaced
// out. Buckets have a burst of 1.
type KeyLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewKeyLimiter creates a KeyLimiter allowing rps calls per second per key.
// A non-positive rps disables limiting.
func NewKeyLimiter(rps float64) *KeyLimiter {
	return &KeyLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a call for key is allowed or ctx is done.
func (l *KeyLimiter) Wait(ctx context.Context, key string) error {
	if l.rps <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
