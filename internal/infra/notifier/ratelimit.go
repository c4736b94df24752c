package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket limiter for outbound webhook calls.
// Slack-compatible webhooks allow roughly one message per second, and
// exceeding that burns the retry budget on 429s.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter that sustains requestsPerSecond and
// allows up to burst requests immediately before throttling.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is done. Call
// before each rate-limited request.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
