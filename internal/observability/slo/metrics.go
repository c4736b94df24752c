package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the application.
// Search requests fan out to feed downloads, article fetches, and chat
// completion calls, so the latency targets are far looser than a typical
// CRUD API: the pipeline itself is allowed up to 60 seconds end to end.
const (
	// AvailabilitySLO defines the target uptime percentage (99.9% = 43 minutes downtime per month)
	AvailabilitySLO = 99.9

	// SearchLatencyP95SLO defines the target for 95th percentile search latency in seconds
	SearchLatencyP95SLO = 30.0

	// SearchLatencyP99SLO defines the target for 99th percentile search latency in seconds
	SearchLatencyP99SLO = 60.0

	// ErrorRateSLO defines the maximum acceptable error rate as a ratio (1% = 0.01).
	// Feeds and publisher sites flake regularly, so the budget is wider than
	// a service that owns all of its dependencies.
	ErrorRateSLO = 0.01
)

// SLO tracking metrics
// These gauges are updated periodically (e.g., every minute) based on recent measurements
// to track whether the service is meeting its SLO targets.
var (
	// SLOAvailability tracks the current availability ratio (0-1)
	// calculated as: (total_requests - 5xx_errors) / total_requests
	SLOAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Current availability ratio (0-1), target: 0.999",
		},
	)

	// SLOSearchLatencyP95 tracks the current p95 search latency in seconds
	// calculated from search_duration_seconds histogram
	SLOSearchLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_search_latency_p95_seconds",
			Help: "Current p95 search latency in seconds, target: 30",
		},
	)

	// SLOSearchLatencyP99 tracks the current p99 search latency in seconds
	// calculated from search_duration_seconds histogram
	SLOSearchLatencyP99 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_search_latency_p99_seconds",
			Help: "Current p99 search latency in seconds, target: 60",
		},
	)

	// SLOErrorRate tracks the current error rate ratio (0-1)
	// calculated as: 5xx_errors / total_requests
	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Current error rate ratio (0-1), target: 0.01",
		},
	)
)

// UpdateAvailability updates the availability SLO metric.
// Call this periodically (e.g., every minute) with the calculated availability ratio.
//
// Example calculation:
//
//	totalRequests := getTotalRequestCount()
//	errorRequests := get5xxErrorCount()
//	availability := float64(totalRequests - errorRequests) / float64(totalRequests)
//	slo.UpdateAvailability(availability)
func UpdateAvailability(ratio float64) {
	SLOAvailability.Set(ratio)
}

// UpdateSearchLatencyP95 updates the p95 search latency SLO metric.
// Call this periodically with the calculated p95 latency in seconds.
//
// Example using Prometheus query:
//
//	histogram_quantile(0.95, rate(search_duration_seconds_bucket[5m]))
func UpdateSearchLatencyP95(seconds float64) {
	SLOSearchLatencyP95.Set(seconds)
}

// UpdateSearchLatencyP99 updates the p99 search latency SLO metric.
// Call this periodically with the calculated p99 latency in seconds.
//
// Example using Prometheus query:
//
//	histogram_quantile(0.99, rate(search_duration_seconds_bucket[5m]))
func UpdateSearchLatencyP99(seconds float64) {
	SLOSearchLatencyP99.Set(seconds)
}

// UpdateErrorRate updates the error rate SLO metric.
// Call this periodically with the calculated error rate ratio.
//
// Example calculation:
//
//	totalRequests := getTotalRequestCount()
//	errorRequests := get5xxErrorCount()
//	errorRate := float64(errorRequests) / float64(totalRequests)
//	slo.UpdateErrorRate(errorRate)
func UpdateErrorRate(ratio float64) {
	SLOErrorRate.Set(ratio)
}
