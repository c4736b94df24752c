// Package news orchestrates the search pipeline. A query becomes
// keywords, the keywords select entries from the publisher feeds,
// matching entries get their bodies fetched and extracted, and the
// survivors are summarized in the requested language. Per-item failures
// drop that item only; the request fails as a whole only when keyword
// extraction, every feed, or every summarization failed.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/fetcher"
	"glbaguni/internal/infra/notifier"
	"glbaguni/internal/infra/registry"
	"glbaguni/internal/infra/summarizer"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/observability/tracing"
	"glbaguni/internal/pkg/budget"
	"glbaguni/internal/usecase/history"
	"glbaguni/internal/usecase/notify"
)

// KeywordSource derives search keywords from a free-form query. It never
// fails; an empty result means the query had no usable terms.
type KeywordSource interface {
	Extract(ctx context.Context, query string) []string
}

// FeedRegistry lists the publishers eligible for feed fan-out.
type FeedRegistry interface {
	All() []registry.Publisher
}

// FeedFetcher fetches and parses one feed into discovered articles.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed *entity.Feed) ([]*entity.Article, error)
}

// PageFetcher retrieves one article page over HTTP.
type PageFetcher interface {
	GetArticle(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// BodyExtractor pulls readable text and a headline out of a fetched page.
type BodyExtractor interface {
	Extract(htmlBody []byte, finalURL string) (string, error)
	Title(htmlBody []byte) string
}

// Summarizer produces a short digest of article text in the target
// language.
type Summarizer interface {
	Summarize(ctx context.Context, text, language string) (string, error)
}

// Service is the search orchestrator. One Service serves the whole
// process; per-request state lives on the stack of each call. The LLM
// semaphore is shared across requests so concurrent searches cannot
// stack calls beyond what the provider tolerates.
type Service struct {
	Keywords   KeywordSource
	Registry   FeedRegistry
	Feeds      FeedFetcher
	Pages      PageFetcher
	Extractor  BodyExtractor
	Summarizer Summarizer
	History    *history.Service
	Notify     *notify.Dispatcher

	caps   budget.Caps
	llmSem chan struct{}
}

// NewService wires the pipeline dependencies. History and Notify may be
// nil to disable those side channels; caps are validated once and stay
// read-only for the life of the service.
func NewService(
	keywords KeywordSource,
	reg FeedRegistry,
	feeds FeedFetcher,
	pages PageFetcher,
	extractor BodyExtractor,
	summ Summarizer,
	hist *history.Service,
	dispatcher *notify.Dispatcher,
	caps budget.Caps,
) (*Service, error) {
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline caps: %w", err)
	}
	return &Service{
		Keywords:   keywords,
		Registry:   reg,
		Feeds:      feeds,
		Pages:      pages,
		Extractor:  extractor,
		Summarizer: summ,
		History:    hist,
		Notify:     dispatcher,
		caps:       caps,
		llmSem:     make(chan struct{}, caps.MaxConcurrentSummaries),
	}, nil
}

// Request is one news search as received from the API or CLI layer.
type Request struct {
	Query       string
	MaxArticles int
	Language    string
	UserID      string
	RequestID   string
}

// Result is a completed search with its diagnostics.
type Result struct {
	RequestID string
	Query     string
	Language  string
	Keywords  []string
	Summaries []*entity.ArticleSummary
	Tally     Tally
	Elapsed   time.Duration
}

// Tally counts what happened at each stage of one search. Dropped is
// keyed by entity.DropReason.
type Tally struct {
	FeedsPlanned  int            `json:"feeds_planned"`
	FeedsFetched  int            `json:"feeds_fetched"`
	Discovered    int            `json:"discovered"`
	Matched       int            `json:"matched"`
	BodiesFetched int            `json:"bodies_fetched"`
	Summarized    int            `json:"summarized"`
	Dropped       map[string]int `json:"dropped,omitempty"`
}

// ProcessQuery runs the full pipeline for one search request.
//
// The request context is wrapped with the overall wall-clock budget, and
// every stage gets at most min(stage default, remaining budget). A stage
// that runs out of time cancels its stragglers and the pipeline carries
// whatever survived forward. At least one summary makes the search a
// success; otherwise the returned error carries the stage tally.
func (s *Service) ProcessQuery(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &entity.ValidationError{Field: "query", Message: "query is required"}
	}
	language, err := normalizeLanguage(req.Language)
	if err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	maxArticles := s.caps.ClampMaxArticles(req.MaxArticles)

	logger := slog.Default().With(
		slog.String("request_id", req.RequestID),
		slog.String("query", query))
	logger.Info("search started",
		slog.Int("max_articles", maxArticles),
		slog.String("language", language))

	bud, ctx, cancel := budget.Start(ctx, s.caps)
	defer cancel()

	keywords, err := s.extractKeywords(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	if len(keywords) == 0 {
		metrics.RecordSearch("no_keywords", time.Since(start))
		return nil, &NoKeywordsError{RequestID: req.RequestID, Language: language}
	}

	plan := s.planFeeds()
	tally := Tally{FeedsPlanned: len(plan)}

	discovered, feedsFetched := s.fetchFeeds(ctx, bud, plan)
	tally.FeedsFetched = feedsFetched
	tally.Discovered = len(discovered)
	if feedsFetched == 0 && ctx.Err() == nil {
		metrics.RecordSearch("feeds_failed", time.Since(start))
		return nil, &AllFeedsFailedError{
			RequestID: req.RequestID,
			Language:  language,
			Keywords:  keywords,
			Tally:     tally,
		}
	}

	matched := filterByKeywords(discovered, keywords)
	unique := dedupeByCanonical(matched)
	kept := capArticles(unique, maxArticles)

	s.fetchBodies(ctx, bud, kept)
	s.summarizeAll(ctx, bud, kept, language)

	summaries := assemble(kept)
	tallyOutcomes(&tally, discovered)

	elapsed := time.Since(start)
	logger.Info("search completed",
		slog.Int("keywords", len(keywords)),
		slog.Int("discovered", tally.Discovered),
		slog.Int("matched", tally.Matched),
		slog.Int("summaries", len(summaries)),
		slog.Duration("elapsed", elapsed))

	if len(summaries) == 0 {
		metrics.RecordSearch("no_results", elapsed)
		return nil, &NoResultsError{
			RequestID: req.RequestID,
			Language:  language,
			Keywords:  keywords,
			Tally:     tally,
		}
	}

	status := "ok"
	if len(summaries) < len(kept) {
		status = "partial"
	}
	metrics.RecordSearch(status, elapsed)

	if s.History != nil && req.UserID != "" {
		if err := s.History.RecordSearch(ctx, req.UserID, query, language, keywords, summarizedOf(kept)); err != nil {
			logger.Warn("failed to record search history", slog.Any("error", err))
		}
	}
	if s.Notify != nil {
		s.Notify.Dispatch(req.RequestID, &notifier.Digest{
			Query:     query,
			Language:  language,
			Summaries: summaries,
			Elapsed:   elapsed,
		})
	}

	return &Result{
		RequestID: req.RequestID,
		Query:     query,
		Language:  language,
		Keywords:  keywords,
		Summaries: summaries,
		Tally:     tally,
		Elapsed:   elapsed,
	}, nil
}

// extractKeywords runs keyword derivation under one slot of the LLM
// semaphore, so a burst of fresh searches cannot stack keyword calls on
// top of a saturated summarize stage.
func (s *Service) extractKeywords(ctx context.Context, query string) ([]string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "news.keywords")
	defer span.End()

	select {
	case s.llmSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.llmSem }()

	return s.Keywords.Extract(ctx, query), nil
}

// normalizeLanguage validates the requested summary language. Empty
// means Korean; anything other than ko or en is a caller error.
func normalizeLanguage(language string) (string, error) {
	switch language {
	case "":
		return summarizer.LanguageKorean, nil
	case summarizer.LanguageKorean, summarizer.LanguageEnglish:
		return language, nil
	}
	return "", &entity.ValidationError{
		Field:   "language",
		Message: fmt.Sprintf("unsupported language %q", language),
	}
}
