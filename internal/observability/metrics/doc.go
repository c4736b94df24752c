// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the domain-level application metrics:
//   - News pipeline metrics (feeds, articles, searches, summaries)
//   - Chat completion metrics (requests, duration, keyword fallbacks)
//   - History database query metrics
//
// HTTP request metrics live next to the metrics middleware in the
// handler layer, which is the only code that sees routes and statuses.
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "glbaguni/internal/observability/metrics"
//
//	func fetchFeed(publisher string) {
//	    start := time.Now()
//	    // ... download and parse the feed ...
//
//	    metrics.RecordFeedFetched(publisher, true)
//	    metrics.RecordFeedFetchDuration(publisher, time.Since(start))
//	}
package metrics
