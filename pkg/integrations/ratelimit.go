package integrations

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds the token bucket settings of a [RateLimiter].
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimit stays well below what hosted workspace APIs allow.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 5, BurstSize: 10}

// defaultBackoff applies when a 429 carries no Retry-After.
const defaultBackoff = 30 * time.Second

// RateLimiter throttles outgoing requests with a token bucket and pauses
// all requests after the server reports a rate limit.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter. A non-positive rate disables throttling
// but keeps the 429 backoff.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, max(cfg.BurstSize, 1))}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimit pauses requests for retryAfter seconds, or for a default
// backoff when the server gave none.
func (r *RateLimiter) RecordRateLimit(retryAfter int) {
	d := time.Duration(retryAfter) * time.Second
	if retryAfter <= 0 {
		d = defaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// Allow reports whether a request may be sent now without waiting.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()
	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
