// Package observability groups the service's logging, metrics, tracing,
// and SLO infrastructure.
//
// Subpackages:
//   - logging: structured JSON loggers built on slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry server spans and pipeline stage spans
//   - slo: service level objective targets and recomputed gauges
//
// Example usage:
//
//	import (
//	    "glbaguni/internal/observability/logging"
//	    "glbaguni/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordFeedFetched("hani", true)
//	}
package observability
