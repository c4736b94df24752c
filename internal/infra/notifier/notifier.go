// Package notifier delivers a compact digest of a completed search to an
// external webhook. The payload is Slack Incoming Webhook compatible
// (Block Kit), so any endpoint speaking that dialect can receive it.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/pkg/config"
)

// Environment variables read by NewFromEnv.
const (
	envWebhookURL     = "DIGEST_WEBHOOK_URL"
	envWebhookTimeout = "DIGEST_WEBHOOK_TIMEOUT"
)

const defaultWebhookTimeout = 10 * time.Second

// Digest is the notification payload produced after a search completes
// with at least one summarized article.
type Digest struct {
	Query     string
	Language  string
	Summaries []*entity.ArticleSummary
	Elapsed   time.Duration
}

// Notifier delivers a search digest to an external channel.
//
// Implementations apply their own rate limiting and retry policy, respect
// context cancellation, and log attempts with a request_id. Callers treat
// delivery as best effort; a returned error means the digest was dropped.
type Notifier interface {
	// NotifyDigest sends one digest. It blocks until delivered, failed,
	// or the context ends.
	NotifyDigest(ctx context.Context, digest *Digest) error

	// IsEnabled reports whether this notifier actually delivers
	// anything. Dispatchers skip disabled notifiers without spawning
	// work.
	IsEnabled() bool
}

var (
	configMetricsOnce sync.Once
	configMetrics     *config.ConfigMetrics
)

func loadConfigMetrics() *config.ConfigMetrics {
	configMetricsOnce.Do(func() {
		configMetrics = config.NewConfigMetrics("notifier")
	})
	return configMetrics
}

// NewFromEnv builds the notifier from DIGEST_WEBHOOK_URL. An unset or
// invalid URL disables notifications entirely; the service keeps working
// without them.
func NewFromEnv() Notifier {
	webhookURL := config.LoadEnvString(envWebhookURL, "")
	if webhookURL == "" {
		slog.Info("digest webhook not configured, notifications disabled")
		return NewNoOp()
	}
	if err := entity.ValidateURL(webhookURL); err != nil {
		slog.Warn("digest webhook URL invalid, notifications disabled",
			slog.Any("error", err))
		loadConfigMetrics().RecordValidationError(envWebhookURL)
		return NewNoOp()
	}

	m := loadConfigMetrics()
	m.RecordLoadTimestamp()

	timeoutResult := config.LoadEnvDuration(envWebhookTimeout, defaultWebhookTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 30*time.Second)
	})
	for _, warning := range timeoutResult.Warnings {
		slog.Warn("notifier config warning",
			slog.String("key", envWebhookTimeout),
			slog.String("warning", warning))
	}
	if timeoutResult.FallbackApplied {
		m.RecordValidationError(envWebhookTimeout)
		m.RecordFallback(envWebhookTimeout)
	}
	m.SetFallbackActive(timeoutResult.FallbackApplied)

	slog.Info("digest webhook notifier enabled",
		slog.Duration("timeout", timeoutResult.Value.(time.Duration)))

	return NewWebhookNotifier(WebhookConfig{
		WebhookURL: webhookURL,
		Timeout:    timeoutResult.Value.(time.Duration),
	})
}
