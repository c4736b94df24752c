package slo

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// searchWindowSize bounds how many recent search durations feed the
// latency percentiles. Old measurements fall out as new ones arrive.
const searchWindowSize = 512

// tracker accumulates the raw measurements behind the SLO gauges.
// Request counts reset every Recompute tick; the search duration window
// rolls continuously.
type tracker struct {
	mu        sync.Mutex
	requests  int64
	errors    int64
	durations []float64
	next      int
}

var current = &tracker{durations: make([]float64, 0, searchWindowSize)}

// ObserveRequest counts one finished HTTP request toward availability
// and error rate. Called by the metrics middleware.
func ObserveRequest(isError bool) {
	current.mu.Lock()
	defer current.mu.Unlock()
	current.requests++
	if isError {
		current.errors++
	}
}

// ObserveSearch adds one completed search duration to the latency
// window. Called whenever a search finishes, successful or not.
func ObserveSearch(seconds float64) {
	current.mu.Lock()
	defer current.mu.Unlock()
	if len(current.durations) < searchWindowSize {
		current.durations = append(current.durations, seconds)
		return
	}
	current.durations[current.next] = seconds
	current.next = (current.next + 1) % searchWindowSize
}

// Recompute publishes the gauges from what accumulated since the last
// call. With no traffic in the interval the availability gauges keep
// their previous values rather than reporting on zero requests.
func Recompute() {
	current.mu.Lock()
	requests, errors := current.requests, current.errors
	current.requests, current.errors = 0, 0
	window := make([]float64, len(current.durations))
	copy(window, current.durations)
	current.mu.Unlock()

	if requests > 0 {
		UpdateAvailability(float64(requests-errors) / float64(requests))
		UpdateErrorRate(float64(errors) / float64(requests))
	}
	if len(window) > 0 {
		sort.Float64s(window)
		UpdateSearchLatencyP95(percentile(window, 0.95))
		UpdateSearchLatencyP99(percentile(window, 0.99))
	}
}

// StartUpdater recomputes the SLO gauges on the given interval until the
// context is canceled. It blocks; run it in a goroutine.
func StartUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Recompute()
		}
	}
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []float64, q float64) float64 {
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
