package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spreads requests to stay inside a vendor quota.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows n requests per window with a burst of n. A
// non-positive n or window means no limit.
func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	if n <= 0 || window <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(window/time.Duration(n)), n)}
}

// Wait blocks until a request may go out or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
