// Package budget centralizes the pipeline's operational limits and the
// deadline arithmetic that keeps every stage inside the overall allowance.
// All numeric caps live here so callers never hard-code their own copies.
package budget

import (
	"fmt"
	"time"
)

// Caps holds the read-only limits of one search pipeline run.
//
// The zero value is not usable; start from DefaultCaps and override
// individual fields before calling Validate.
type Caps struct {
	// DefaultMaxArticles is used when a request does not say how many
	// articles it wants. ClampMaxArticles bounds explicit requests.
	DefaultMaxArticles int
	MinMaxArticles     int
	MaxMaxArticles     int

	// Feed selection limits. A query never touches more than
	// MaxTotalFeeds feeds, and never more than MaxFeedsPerPublisher
	// from a single publisher.
	MaxFeedsPerPublisher int
	MaxTotalFeeds        int

	// MaxEntriesPerFeed limits how many entries one feed contributes.
	// Values above MaxEntriesCeiling are clamped down to it.
	MaxEntriesPerFeed int
	MaxEntriesCeiling int

	// Per-task deadlines. Each is further capped by the remaining
	// overall budget at the time the task starts.
	FeedTaskTimeout      time.Duration
	BodyTaskTimeout      time.Duration
	SummarizeTaskTimeout time.Duration

	// StageTimeout is the soft deadline for one whole pipeline stage;
	// OverallTimeout bounds the entire run.
	StageTimeout   time.Duration
	OverallTimeout time.Duration

	// MaxConcurrentSummaries bounds parallel LLM calls.
	MaxConcurrentSummaries int

	// MinContentLength is the shortest extracted body (in runes) that
	// still counts as a usable article.
	MinContentLength int

	// MaxInputChars is the largest text (in runes) handed to the LLM
	// in a single user message; longer inputs are truncated.
	MaxInputChars int

	// MaxKeywords bounds how many search keywords a query produces.
	MaxKeywords int
}

// DefaultCaps returns the production limits of the pipeline.
func DefaultCaps() Caps {
	return Caps{
		DefaultMaxArticles:     10,
		MinMaxArticles:         1,
		MaxMaxArticles:         20,
		MaxFeedsPerPublisher:   2,
		MaxTotalFeeds:          6,
		MaxEntriesPerFeed:      20,
		MaxEntriesCeiling:      100,
		FeedTaskTimeout:        10 * time.Second,
		BodyTaskTimeout:        20 * time.Second,
		SummarizeTaskTimeout:   30 * time.Second,
		StageTimeout:           30 * time.Second,
		OverallTimeout:         60 * time.Second,
		MaxConcurrentSummaries: 3,
		MinContentLength:       50,
		MaxInputChars:          8000,
		MaxKeywords:            10,
	}
}

// Validate checks that the caps describe a runnable pipeline.
func (c Caps) Validate() error {
	if c.MinMaxArticles < 1 {
		return fmt.Errorf("min max_articles must be at least 1, got %d", c.MinMaxArticles)
	}
	if c.MaxMaxArticles < c.MinMaxArticles {
		return fmt.Errorf("max_articles range invalid: [%d, %d]", c.MinMaxArticles, c.MaxMaxArticles)
	}
	if c.DefaultMaxArticles < c.MinMaxArticles || c.DefaultMaxArticles > c.MaxMaxArticles {
		return fmt.Errorf("default max_articles %d outside [%d, %d]", c.DefaultMaxArticles, c.MinMaxArticles, c.MaxMaxArticles)
	}
	if c.MaxFeedsPerPublisher < 1 {
		return fmt.Errorf("max feeds per publisher must be positive, got %d", c.MaxFeedsPerPublisher)
	}
	if c.MaxTotalFeeds < 1 {
		return fmt.Errorf("max total feeds must be positive, got %d", c.MaxTotalFeeds)
	}
	if c.MaxEntriesPerFeed < 1 || c.MaxEntriesCeiling < 1 {
		return fmt.Errorf("entry limits must be positive, got %d (ceiling %d)", c.MaxEntriesPerFeed, c.MaxEntriesCeiling)
	}
	for name, d := range map[string]time.Duration{
		"feed task timeout":      c.FeedTaskTimeout,
		"body task timeout":      c.BodyTaskTimeout,
		"summarize task timeout": c.SummarizeTaskTimeout,
		"stage timeout":          c.StageTimeout,
		"overall timeout":        c.OverallTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if c.MaxConcurrentSummaries < 1 {
		return fmt.Errorf("max concurrent summaries must be positive, got %d", c.MaxConcurrentSummaries)
	}
	if c.MinContentLength < 1 {
		return fmt.Errorf("min content length must be positive, got %d", c.MinContentLength)
	}
	if c.MaxInputChars < c.MinContentLength {
		return fmt.Errorf("max input chars %d below min content length %d", c.MaxInputChars, c.MinContentLength)
	}
	if c.MaxKeywords < 1 {
		return fmt.Errorf("max keywords must be positive, got %d", c.MaxKeywords)
	}
	return nil
}

// ClampMaxArticles bounds a requested article count to the allowed range.
// Zero (the "not specified" value) becomes the default.
func (c Caps) ClampMaxArticles(n int) int {
	if n == 0 {
		return c.DefaultMaxArticles
	}
	if n < c.MinMaxArticles {
		return c.MinMaxArticles
	}
	if n > c.MaxMaxArticles {
		return c.MaxMaxArticles
	}
	return n
}

// ClampEntriesPerFeed bounds a configured per-feed entry limit.
func (c Caps) ClampEntriesPerFeed(n int) int {
	if n < 1 {
		return c.MaxEntriesPerFeed
	}
	if n > c.MaxEntriesCeiling {
		return c.MaxEntriesCeiling
	}
	return n
}
