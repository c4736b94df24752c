package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glbaguni/internal/resilience/retry"
)

var (
	// ErrTimeout wraps calls that ran out of time, either the per-call
	// timeout or a deadline inherited from the caller.
	ErrTimeout = errors.New("llm request timed out")

	// ErrEmptyResponse marks a completed API call that carried no usable
	// text, including refusals. Not retried; the model already answered.
	ErrEmptyResponse = errors.New("llm returned empty response")

	// ErrCancelled wraps calls abandoned because the caller cancelled.
	ErrCancelled = errors.New("llm request cancelled")
)

// RateLimitedError reports a 429 from the provider that survived the
// retry budget. RetryAfter is the provider's hint, zero when absent.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by provider, retry after %s", e.RetryAfter)
	}
	return "rate limited by provider"
}

// APIError reports a non-429 HTTP failure from the provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm provider returned HTTP %d: %s", e.Status, e.Message)
}

// mapFinalError converts whatever is left after the retry loop into the
// package taxonomy. Transport-level details stay in the chain; callers
// match on the taxonomy types.
func mapFinalError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return &RateLimitedError{RetryAfter: httpErr.RetryAfter}
		}
		return &APIError{Status: httpErr.StatusCode, Message: httpErr.Message}
	}

	return err
}

// statusLabel folds an error into the metric status label.
func statusLabel(err error) string {
	var rateLimited *RateLimitedError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &rateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}
