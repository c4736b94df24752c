// Package entity defines the core domain entities and validation logic for the
// news pipeline. It contains the fundamental business objects such as Article
// and Feed, along with their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"strings"
	"time"
)

// ArticleState tracks an article's progress through the search pipeline.
// Transitions are linear (Discovered, Filtered, BodyFetched, Summarized);
// any non-terminal state may move to Dropped with a reason.
type ArticleState int

const (
	StateDiscovered ArticleState = iota
	StateFiltered
	StateBodyFetched
	StateSummarized
	StateDropped
)

// String returns the lowercase state name used in logs and stage tallies.
func (s ArticleState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateFiltered:
		return "filtered"
	case StateBodyFetched:
		return "body_fetched"
	case StateSummarized:
		return "summarized"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// DropReason explains why an article left the pipeline before summarization.
type DropReason string

const (
	DropNoKeywordMatch   DropReason = "no_keyword_match"
	DropDuplicateURL     DropReason = "duplicate_url"
	DropOverArticleCap   DropReason = "over_article_cap"
	DropBodyFetchFailed  DropReason = "body_fetch_failed"
	DropExtractionFailed DropReason = "extraction_failed"
	DropSummarizeFailed  DropReason = "summarize_failed"
	DropInvalidEntry     DropReason = "invalid_entry"
)

// Article represents a news article flowing through the search pipeline.
// It carries the feed entry metadata from discovery, the extracted body
// once fetched, and the generated summary once summarization succeeds.
type Article struct {
	Title        string
	URL          string
	CanonicalURL string
	Source       string
	RawSummary   string
	Body         string
	Summary      string
	PublishedAt  time.Time
	State        ArticleState
	Reason       DropReason
}

// NewArticle validates feed entry fields and returns an Article in the
// Discovered state. The link must be an absolute http(s) URL; the
// canonical form of the link is computed once here for deduplication.
func NewArticle(title, link, source, rawSummary string, publishedAt time.Time) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if err := ValidateURL(link); err != nil {
		return nil, err
	}
	canonical, err := CanonicalURL(link)
	if err != nil {
		return nil, err
	}

	return &Article{
		Title:        title,
		URL:          link,
		CanonicalURL: canonical,
		Source:       source,
		RawSummary:   rawSummary,
		PublishedAt:  publishedAt,
		State:        StateDiscovered,
	}, nil
}

// MarkFiltered records that the article matched at least one search keyword.
func (a *Article) MarkFiltered() error {
	if a.State != StateDiscovered {
		return fmt.Errorf("cannot filter article in state %q", a.State)
	}
	a.State = StateFiltered
	return nil
}

// MarkBodyFetched stores the extracted body text and advances the state.
func (a *Article) MarkBodyFetched(body string) error {
	if a.State != StateFiltered {
		return fmt.Errorf("cannot attach body in state %q", a.State)
	}
	a.Body = body
	a.State = StateBodyFetched
	return nil
}

// MarkSummarized stores the generated summary and finishes the pipeline.
func (a *Article) MarkSummarized(summary string) error {
	if a.State != StateBodyFetched {
		return fmt.Errorf("cannot summarize article in state %q", a.State)
	}
	a.Summary = summary
	a.State = StateSummarized
	return nil
}

// Drop removes the article from the pipeline with a reason.
// Terminal articles cannot be dropped; the first reason wins.
func (a *Article) Drop(reason DropReason) error {
	if a.State == StateSummarized || a.State == StateDropped {
		return fmt.Errorf("cannot drop article in state %q", a.State)
	}
	a.State = StateDropped
	a.Reason = reason
	return nil
}
