// Package resilience groups the fault tolerance building blocks used
// around external calls: LLM providers, publisher feeds, article pages,
// and the history database.
//
// Subpackages:
//   - circuitbreaker: gobreaker-backed breakers with per-dependency
//     presets (OpenAIAPIConfig, AnthropicAPIConfig, FeedFetchConfig,
//     ArticleFetchConfig, DBConfig) and a database/sql wrapper.
//   - retry: backoff with jitter, Retry-After awareness, and retryable
//     error classification.
//
// Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return client.Fetch(ctx, feed)
//	})
//
//	err = retry.WithBackoff(ctx, retry.LLMAPIConfig(), func() error {
//	    return callProvider(ctx)
//	})
package resilience
