package config

import (
	"log/slog"
	"time"
)

// RateLimitConfig configures the per-IP sliding window limiter in
// front of the API.
type RateLimitConfig struct {
	// Enabled turns the limiter off entirely when false.
	Enabled bool
	// Limit is the number of requests allowed per Window per client IP.
	Limit int
	// Window is the sliding window length.
	Window time.Duration
	// CleanupInterval is how often expired per-IP records are removed.
	CleanupInterval time.Duration
}

// LoadRateLimitConfig reads the limiter settings from the environment.
//
// Environment variables:
//   - RATELIMIT_ENABLED: enable/disable the limiter (default: true)
//   - RATELIMIT_IP_LIMIT: requests per window per IP (default: 100)
//   - RATELIMIT_IP_WINDOW: window length (default: 1m)
//   - RATELIMIT_CLEANUP_INTERVAL: record cleanup cadence (default: 5m)
//
// Invalid values log a warning and fall back to the default. A bad
// limit setting must not keep the API from starting.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: GetEnvBool("RATELIMIT_ENABLED", true),
	}

	limit := GetEnvInt("RATELIMIT_IP_LIMIT", 100)
	if limit <= 0 {
		slog.Warn("invalid RATELIMIT_IP_LIMIT, using default",
			slog.Int("value", limit),
			slog.Int("default", 100))
		limit = 100
	}
	cfg.Limit = limit

	window := GetEnvDuration("RATELIMIT_IP_WINDOW", 1*time.Minute)
	if err := ValidatePositiveDuration(window); err != nil {
		slog.Warn("invalid RATELIMIT_IP_WINDOW, using default",
			slog.String("value", window.String()),
			slog.String("default", "1m"),
			slog.String("error", err.Error()))
		window = 1 * time.Minute
	}
	cfg.Window = window

	interval := GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	if err := ValidateDurationRange(interval, time.Second, time.Hour); err != nil {
		slog.Warn("invalid RATELIMIT_CLEANUP_INTERVAL, using default",
			slog.String("value", interval.String()),
			slog.String("default", "5m"),
			slog.String("error", err.Error()))
		interval = 5 * time.Minute
	}
	cfg.CleanupInterval = interval

	return cfg
}
