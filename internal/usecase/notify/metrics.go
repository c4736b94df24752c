package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for digest delivery monitoring
var (
	digestDispatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digest_notifications_dispatched_total",
			Help: "Total number of digest deliveries started",
		},
	)

	digestSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_notifications_sent_total",
			Help: "Total number of digest delivery results",
		},
		[]string{"status"}, // status: success|failure
	)

	digestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_notification_duration_seconds",
			Help:    "Digest delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)

	digestDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_notifications_dropped_total",
			Help: "Total number of digests dropped before delivery",
		},
		[]string{"reason"}, // reason: pool_full|cooldown
	)

	digestCooldownTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digest_notification_cooldowns_total",
			Help: "Total number of delivery cooldowns after repeated failures",
		},
	)

	digestActiveGoroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_notification_active_goroutines",
			Help: "Number of active digest delivery goroutines",
		},
	)
)

// RecordDispatch records the start of one delivery attempt.
func RecordDispatch() {
	digestDispatchedTotal.Inc()
}

// RecordSuccess records a delivered digest and its duration.
func RecordSuccess(duration time.Duration) {
	digestSentTotal.WithLabelValues("success").Inc()
	digestDuration.Observe(duration.Seconds())
}

// RecordFailure records a failed delivery and its duration.
func RecordFailure(duration time.Duration) {
	digestSentTotal.WithLabelValues("failure").Inc()
	digestDuration.Observe(duration.Seconds())
}

// RecordDropped records a digest dropped before delivery was attempted.
func RecordDropped(reason string) {
	digestDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordCooldown records the dispatcher entering a cooldown.
func RecordCooldown() {
	digestCooldownTotal.Inc()
}

// IncrementActiveGoroutines increments the active goroutines gauge by 1.
func IncrementActiveGoroutines() {
	digestActiveGoroutines.Inc()
}

// DecrementActiveGoroutines decrements the active goroutines gauge by 1.
func DecrementActiveGoroutines() {
	digestActiveGoroutines.Dec()
}
