// Package notify dispatches search digests to the configured notifier
// without blocking the request that produced them. The HTTP response
// goes out first; delivery runs in the background on the dispatcher's
// own context with its own timeout.
package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"glbaguni/internal/infra/notifier"

	"github.com/google/uuid"
)

const (
	// deliveryTimeout bounds one background delivery, including the
	// notifier's rate limit wait and retries.
	deliveryTimeout = 30 * time.Second

	// slotTimeout bounds the wait for a worker slot. A full pool means
	// the webhook is slow or down; queueing longer only piles up
	// goroutines.
	slotTimeout = 5 * time.Second

	// failureLimit consecutive failures put the dispatcher into a
	// cooldown during which digests are dropped.
	failureLimit      = 5
	cooldownPeriod    = 5 * time.Minute
	defaultMaxWorkers = 4
)

// DeliveryHealth is a snapshot of dispatcher state for health endpoints.
type DeliveryHealth struct {
	Enabled             bool
	CoolingDown         bool
	CooldownEndsAt      *time.Time
	ConsecutiveFailures int
}

// Dispatcher fans search digests out to the notifier in background
// goroutines. Failures never propagate to the caller; they are logged,
// counted, and after failureLimit in a row the dispatcher cools down
// instead of hammering a broken webhook.
type Dispatcher struct {
	notifier   notifier.Notifier
	workerPool chan struct{}

	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time

	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	// Overridable in tests.
	deliveryTimeout time.Duration
	slotTimeout     time.Duration
	cooldownPeriod  time.Duration
}

// NewDispatcher creates a dispatcher over the given notifier.
// maxWorkers bounds concurrent deliveries; values below 1 use the
// default.
func NewDispatcher(n notifier.Notifier, maxWorkers int) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = defaultMaxWorkers
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &Dispatcher{
		notifier:        n,
		workerPool:      make(chan struct{}, maxWorkers),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		deliveryTimeout: deliveryTimeout,
		slotTimeout:     slotTimeout,
		cooldownPeriod:  cooldownPeriod,
	}
}

// Dispatch queues one digest for background delivery and returns
// immediately. requestID ties the delivery logs back to the search that
// produced the digest; when empty a fresh ID is generated.
//
// Deliveries run on the dispatcher's own context, so the originating
// request finishing or being canceled does not abort them.
func (d *Dispatcher) Dispatch(requestID string, digest *notifier.Digest) {
	if digest == nil || len(digest.Summaries) == 0 {
		slog.Debug("skipping digest dispatch, nothing to deliver")
		return
	}

	if !d.notifier.IsEnabled() {
		slog.Debug("skipping digest dispatch, notifier disabled",
			slog.String("query", digest.Query))
		return
	}

	if requestID == "" {
		requestID = uuid.New().String()
	}

	slog.Info("dispatching search digest",
		slog.String("request_id", requestID),
		slog.String("query", digest.Query),
		slog.Int("summaries", len(digest.Summaries)))

	d.wg.Add(1)
	go d.deliver(requestID, digest)
}

// deliver runs one background delivery.
func (d *Dispatcher) deliver(requestID string, digest *notifier.Digest) {
	defer d.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during digest delivery",
				slog.String("request_id", requestID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case d.workerPool <- struct{}{}:
		defer func() { <-d.workerPool }()
	case <-time.After(d.slotTimeout):
		slog.Warn("digest dropped, worker pool full",
			slog.String("request_id", requestID),
			slog.String("query", digest.Query))
		RecordDropped("pool_full")
		return
	}

	d.mu.Lock()
	if until := d.disabledUntil; time.Now().Before(until) {
		d.mu.Unlock()
		slog.Warn("digest dropped, dispatcher cooling down",
			slog.String("request_id", requestID),
			slog.Time("cooldown_ends", until))
		RecordDropped("cooldown")
		return
	}
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(d.shutdownCtx, d.deliveryTimeout)
	defer cancel()

	RecordDispatch()
	start := time.Now()
	err := d.notifier.NotifyDigest(ctx, digest)
	duration := time.Since(start)

	d.mu.Lock()
	if err != nil {
		d.consecutiveFailures++
		if d.consecutiveFailures >= failureLimit {
			d.disabledUntil = time.Now().Add(d.cooldownPeriod)
			slog.Error("digest delivery cooling down after repeated failures",
				slog.String("request_id", requestID),
				slog.Int("consecutive_failures", d.consecutiveFailures),
				slog.Time("cooldown_ends", d.disabledUntil))
			RecordCooldown()
		}
	} else {
		d.consecutiveFailures = 0
	}
	d.mu.Unlock()

	if err != nil {
		RecordFailure(duration)
		slog.Warn("digest delivery failed",
			slog.String("request_id", requestID),
			slog.String("query", digest.Query),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}

	RecordSuccess(duration)
	slog.Info("digest delivered",
		slog.String("request_id", requestID),
		slog.String("query", digest.Query),
		slog.Int("summaries", len(digest.Summaries)),
		slog.Duration("duration", duration))
}

// Health returns a snapshot of the dispatcher state.
func (d *Dispatcher) Health() DeliveryHealth {
	d.mu.Lock()
	defer d.mu.Unlock()

	health := DeliveryHealth{
		Enabled:             d.notifier.IsEnabled(),
		ConsecutiveFailures: d.consecutiveFailures,
	}

	if time.Now().Before(d.disabledUntil) {
		health.CoolingDown = true
		ends := d.disabledUntil
		health.CooldownEndsAt = &ends
	}

	return health
}

// Shutdown cancels in-flight deliveries and waits for their goroutines
// to finish, up to the context deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	slog.Info("shutting down digest dispatcher")

	d.shutdownCancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("digest dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("digest dispatcher shutdown timed out")
		return ctx.Err()
	}
}
