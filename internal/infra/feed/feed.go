// Package feed downloads and parses RSS/Atom feeds into articles.
// It uses the gofeed library for parsing and the shared fetcher for
// transport, so feed requests get the same size caps, redirect limits,
// and charset handling as article requests.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/fetcher"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/resilience/retry"
)

const (
	// DefaultMaxEntries is how many entries one feed contributes.
	DefaultMaxEntries = 20

	// MaxEntriesCeiling is the hard upper bound, applied even when the
	// configured value is larger.
	MaxEntriesCeiling = 100
)

var (
	ErrMalformedXML        = errors.New("malformed feed XML")
	ErrUnsupportedFeedType = errors.New("unsupported feed type")
	ErrNoEntries           = errors.New("feed has no usable entries")
)

// Client fetches and parses one feed at a time. Safe for concurrent use.
type Client struct {
	fetcher     *fetcher.Fetcher
	retryConfig retry.Config
	maxEntries  int
}

// NewClient creates a feed client on top of the shared fetcher.
// maxEntries <= 0 selects DefaultMaxEntries; values above the ceiling are
// clamped.
func NewClient(f *fetcher.Fetcher, maxEntries int) *Client {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxEntries > MaxEntriesCeiling {
		maxEntries = MaxEntriesCeiling
	}
	return &Client{
		fetcher:     f,
		retryConfig: retry.FeedFetchConfig(),
		maxEntries:  maxEntries,
	}
}

// Fetch downloads the feed and returns its entries as articles in the
// Discovered state. Entries without a title or an absolute http(s) link
// are skipped, not fatal. An entirely unusable feed is ErrNoEntries.
func (c *Client) Fetch(ctx context.Context, feed *entity.Feed) ([]*entity.Article, error) {
	var articles []*entity.Article
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.doFetch(ctx, feed)
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("publisher", feed.Publisher),
					slog.String("url", feed.URL))
			}
			return err
		}
		articles = result
		return nil
	})

	duration := time.Since(start)
	metrics.RecordFeedFetchDuration(feed.Publisher, duration)

	if retryErr != nil {
		metrics.RecordFeedFetched(feed.Publisher, false)
		metrics.RecordFeedFetchError(feed.Publisher, fetcher.ErrorLabel(retryErr))
		return nil, fmt.Errorf("fetching feed %s: %w", feed.URL, retryErr)
	}

	metrics.RecordFeedFetched(feed.Publisher, true)
	metrics.RecordFeedEntries(feed.Publisher, len(articles))
	return articles, nil
}

// doFetch performs one fetch-and-parse pass without retry.
func (c *Client) doFetch(ctx context.Context, feed *entity.Feed) ([]*entity.Article, error) {
	res, err := c.fetcher.GetFeed(ctx, feed.URL)
	if err != nil {
		return nil, err
	}

	parsed, err := parseFeed(res.Body)
	if err != nil {
		return nil, err
	}

	articles := make([]*entity.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(articles) >= c.maxEntries {
			break
		}

		article, err := entryToArticle(item, feed.Publisher)
		if err != nil {
			slog.Debug("skipping feed entry",
				slog.String("publisher", feed.Publisher),
				slog.String("title", item.Title),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, article)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntries, feed.URL)
	}
	return articles, nil
}

// parseFeed maps gofeed errors onto the package sentinels.
func parseFeed(body []byte) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	parsed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFeedType, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	return parsed, nil
}

// entryToArticle validates one feed item. The raw summary prefers full
// content over the short description when both are present.
func entryToArticle(item *gofeed.Item, publisher string) (*entity.Article, error) {
	rawSummary := item.Content
	if strings.TrimSpace(rawSummary) == "" {
		rawSummary = item.Description
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	return entity.NewArticle(item.Title, strings.TrimSpace(item.Link), publisher, rawSummary, publishedAt)
}
