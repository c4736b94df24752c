package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// UserAgent identifies the service on every outbound request. Publisher
// operators can use it to find and rate-limit us.
const UserAgent = "glbaguni-bot/1.0 (+news digest)"

// Config controls the shared HTTP client.
type Config struct {
	// ConnectTimeout bounds the TCP dial of a single request.
	ConnectTimeout time.Duration

	// RequestTimeout bounds a whole request including the body read.
	RequestTimeout time.Duration

	// FeedTimeout is the per-call ceiling applied by GetFeed.
	FeedTimeout time.Duration

	// ArticleTimeout is the per-call ceiling applied by GetArticle.
	ArticleTimeout time.Duration

	// MaxBodySize caps the response body in bytes. Larger bodies fail
	// with ErrBodyTooLarge rather than being truncated.
	MaxBodySize int64

	// MaxRedirects caps the redirect chain length.
	MaxRedirects int

	// MaxConnsPerHost and MaxIdleConnsPerHost size the connection pool.
	MaxConnsPerHost     int
	MaxIdleConnsPerHost int

	// DenyPrivateIPs rejects URLs whose host resolves to loopback,
	// private, or link-local addresses (SSRF protection).
	DenyPrivateIPs bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout:      10 * time.Second,
		RequestTimeout:      30 * time.Second,
		FeedTimeout:         10 * time.Second,
		ArticleTimeout:      30 * time.Second,
		MaxBodySize:         4 * 1024 * 1024,
		MaxRedirects:        3,
		MaxConnsPerHost:     20,
		MaxIdleConnsPerHost: 10,
		DenyPrivateIPs:      true,
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %v", c.ConnectTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %v", c.FeedTimeout)
	}
	if c.ArticleTimeout <= 0 {
		return fmt.Errorf("article timeout must be positive, got %v", c.ArticleTimeout)
	}
	if c.MaxBodySize < 1024 {
		return fmt.Errorf("max body size must be at least 1KB, got %d", c.MaxBodySize)
	}
	if c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be at most 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.MaxConnsPerHost < 1 {
		return fmt.Errorf("max conns per host must be at least 1, got %d", c.MaxConnsPerHost)
	}
	if c.MaxIdleConnsPerHost < 1 || c.MaxIdleConnsPerHost > c.MaxConnsPerHost {
		return fmt.Errorf("max idle conns per host must be between 1 and %d, got %d", c.MaxConnsPerHost, c.MaxIdleConnsPerHost)
	}
	return nil
}

// LoadConfigFromEnv reads FETCHER_* overrides on top of the defaults.
// Invalid values are errors: a typo in a deployment manifest should fail
// startup, not silently fall back.
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("FETCHER_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_CONNECT_TIMEOUT: %w", err)
		}
		cfg.ConnectTimeout = d
	}

	if v := os.Getenv("FETCHER_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if v := os.Getenv("FETCHER_FEED_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_FEED_TIMEOUT: %w", err)
		}
		cfg.FeedTimeout = d
	}

	if v := os.Getenv("FETCHER_ARTICLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_ARTICLE_TIMEOUT: %w", err)
		}
		cfg.ArticleTimeout = d
	}

	if v := os.Getenv("FETCHER_MAX_BODY_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_MAX_BODY_SIZE: %w", err)
		}
		cfg.MaxBodySize = size
	}

	if v := os.Getenv("FETCHER_MAX_REDIRECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_MAX_REDIRECTS: %w", err)
		}
		cfg.MaxRedirects = n
	}

	if v := os.Getenv("FETCHER_DENY_PRIVATE_IPS"); v != "" {
		deny, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCHER_DENY_PRIVATE_IPS: %w", err)
		}
		cfg.DenyPrivateIPs = deny
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher config: %w", err)
	}
	return cfg, nil
}
