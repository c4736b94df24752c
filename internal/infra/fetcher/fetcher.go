// Package fetcher downloads feeds and article pages over one shared,
// pooled HTTP client. Every response is capped in size, followed through
// at most a few redirects, and normalized to UTF-8 before anyone parses
// it. Feed and article traffic run behind separate circuit breakers, so a
// publisher that starts blocking article requests does not take feed
// polling down with it.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"glbaguni/internal/resilience/circuitbreaker"
	"glbaguni/internal/resilience/retry"
)

// Result is a fetched document.
type Result struct {
	// Body is the response body decoded to UTF-8.
	Body []byte

	// ContentType is the raw Content-Type header.
	ContentType string

	// FinalURL is the URL after redirects. Canonicalization and dedup
	// work on this, not on the URL that was requested.
	FinalURL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int
}

// Fetcher is the shared HTTP client. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	config    *Config
	feedCB    *circuitbreaker.CircuitBreaker
	articleCB *circuitbreaker.CircuitBreaker
}

// New builds a Fetcher. A nil config means DefaultConfig.
func New(config *Config) (*Fetcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher config: %w", err)
	}

	f := &Fetcher{
		config:    config,
		feedCB:    circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		articleCB: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
	}

	f.client = &http.Client{
		Timeout: config.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   config.ConnectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxConnsPerHost:     config.MaxConnsPerHost,
			MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// via holds the original request too, so the Nth redirect
			// hop sees len(via) == N.
			if len(via) > config.MaxRedirects {
				return fmt.Errorf("%w: more than %d redirects", ErrTooManyRedirects, config.MaxRedirects)
			}
			if err := validateURL(req.URL.String(), config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}

	return f, nil
}

// Get fetches a URL with no circuit breaker and no extra deadline beyond
// the caller's context and the client timeout. The pipeline paths use
// GetFeed and GetArticle instead.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	if err := validateURL(rawURL, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}
	return f.doGet(ctx, rawURL)
}

// GetFeed fetches a feed URL through the feed circuit breaker with the
// feed timeout. An earlier deadline on ctx still wins.
func (f *Fetcher) GetFeed(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.FeedTimeout)
	defer cancel()
	return f.getThrough(ctx, f.feedCB, rawURL)
}

// GetArticle fetches an article page through the article circuit breaker
// with the article timeout.
func (f *Fetcher) GetArticle(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.ArticleTimeout)
	defer cancel()
	return f.getThrough(ctx, f.articleCB, rawURL)
}

// FeedBreakerOpen reports whether the feed circuit breaker is open.
func (f *Fetcher) FeedBreakerOpen() bool {
	return f.feedCB.IsOpen()
}

// ArticleBreakerOpen reports whether the article circuit breaker is open.
func (f *Fetcher) ArticleBreakerOpen() bool {
	return f.articleCB.IsOpen()
}

func (f *Fetcher) getThrough(ctx context.Context, cb *circuitbreaker.CircuitBreaker, rawURL string) (*Result, error) {
	// Validation failures stay outside the breaker; a batch of bad URLs
	// says nothing about the remote host.
	if err := validateURL(rawURL, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	out, err := cb.Execute(func() (interface{}, error) {
		return f.doGet(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	res, ok := out.(*Result)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker: %T", out)
	}
	return res, nil
}

func (f *Fetcher) doGet(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko, en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("reading body: %w", err))
	}
	if int64(len(raw)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	return &Result{
		Body:        decodeBody(raw, contentType),
		ContentType: contentType,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
	}, nil
}
