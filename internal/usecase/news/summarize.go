package news

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/notifier"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/observability/tracing"
	"glbaguni/internal/pkg/budget"
	"glbaguni/internal/pkg/sanitize"
)

// SummarizeRequest asks for digests of explicit article URLs.
type SummarizeRequest struct {
	URLs      []string
	Language  string
	UserID    string
	RequestID string
}

// SummarizeResult carries the digests and what happened to the rest.
type SummarizeResult struct {
	RequestID string
	Language  string
	Summaries []*entity.ArticleSummary
	Requested int
	Dropped   map[string]int
	Elapsed   time.Duration
}

// directFetch is the outcome of fetching one explicit URL. Exactly one
// of article and reason is set.
type directFetch struct {
	article *entity.Article
	reason  entity.DropReason
}

// SummarizeArticles runs the tail of the pipeline for explicit URLs:
// fetch, extract, summarize. No keyword or feed stages are involved;
// duplicate URLs collapse onto their first occurrence and the shared LLM
// semaphore still applies.
func (s *Service) SummarizeArticles(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	start := time.Now()

	if len(req.URLs) == 0 {
		return nil, &entity.ValidationError{Field: "urls", Message: "at least one URL is required"}
	}
	language, err := normalizeLanguage(req.Language)
	if err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	logger := slog.Default().With(slog.String("request_id", req.RequestID))
	logger.Info("direct summarization started",
		slog.Int("urls", len(req.URLs)),
		slog.String("language", language))

	bud, ctx, cancel := budget.Start(ctx, s.caps)
	defer cancel()

	dropped := make(map[string]int)
	targets := s.planTargets(req.URLs, dropped, logger)
	if len(targets) == 0 {
		return nil, &NoResultsError{
			RequestID: req.RequestID,
			Language:  language,
			Tally:     Tally{Dropped: dropped},
		}
	}

	results := make([]directFetch, len(targets))
	{
		fetchCtx, span := tracing.GetTracer().Start(ctx, "news.fetch_direct")
		span.SetAttributes(attribute.Int("urls", len(targets)))
		stageCtx, stageCancel := bud.StageContext(fetchCtx, s.caps.StageTimeout)
		eg, egCtx := errgroup.WithContext(stageCtx)
		for i, rawURL := range targets {
			i, rawURL := i, rawURL
			eg.Go(func() error {
				results[i] = s.fetchDirect(egCtx, rawURL)
				return nil
			})
		}
		_ = eg.Wait()
		stageCancel()
		span.End()
	}

	articles := make([]*entity.Article, 0, len(targets))
	for _, r := range results {
		if r.article == nil {
			dropped[string(r.reason)]++
			metrics.RecordArticleOutcome(string(r.reason))
			continue
		}
		articles = append(articles, r.article)
	}

	s.summarizeAll(ctx, bud, articles, language)

	summaries := assemble(articles)
	for _, a := range articles {
		switch a.State {
		case entity.StateSummarized:
			metrics.RecordArticleOutcome("summarized")
		case entity.StateDropped:
			dropped[string(a.Reason)]++
			metrics.RecordArticleOutcome(string(a.Reason))
		}
	}

	elapsed := time.Since(start)
	logger.Info("direct summarization completed",
		slog.Int("requested", len(req.URLs)),
		slog.Int("summaries", len(summaries)),
		slog.Duration("elapsed", elapsed))

	if len(summaries) == 0 {
		return nil, &NoResultsError{
			RequestID: req.RequestID,
			Language:  language,
			Tally:     Tally{Dropped: dropped},
		}
	}

	if s.History != nil && req.UserID != "" {
		if err := s.History.RecordSummaries(ctx, req.UserID, language, summarizedOf(articles)); err != nil {
			logger.Warn("failed to record summary history", slog.Any("error", err))
		}
	}
	if s.Notify != nil {
		s.Notify.Dispatch(req.RequestID, &notifier.Digest{
			Language:  language,
			Summaries: summaries,
			Elapsed:   elapsed,
		})
	}

	return &SummarizeResult{
		RequestID: req.RequestID,
		Language:  language,
		Summaries: summaries,
		Requested: len(req.URLs),
		Dropped:   dropped,
		Elapsed:   elapsed,
	}, nil
}

// planTargets validates and deduplicates the requested URLs, keeping
// input order. Rejected URLs land in the dropped tally.
func (s *Service) planTargets(rawURLs []string, dropped map[string]int, logger *slog.Logger) []string {
	seen := make(map[string]struct{}, len(rawURLs))
	targets := make([]string, 0, len(rawURLs))
	for _, rawURL := range rawURLs {
		rawURL = strings.TrimSpace(rawURL)
		canonical, err := entity.CanonicalURL(rawURL)
		if err != nil {
			logger.Info("skipping invalid URL",
				slog.String("url", rawURL),
				slog.Any("error", err))
			dropped[string(entity.DropInvalidEntry)]++
			continue
		}
		if _, dup := seen[canonical]; dup {
			dropped[string(entity.DropDuplicateURL)]++
			continue
		}
		seen[canonical] = struct{}{}
		if len(targets) == s.caps.MaxMaxArticles {
			dropped[string(entity.DropOverArticleCap)]++
			continue
		}
		targets = append(targets, rawURL)
	}
	return targets
}

// fetchDirect builds a body-carrying article straight from a URL. The
// page itself supplies the title, so construction happens after the
// fetch.
func (s *Service) fetchDirect(ctx context.Context, rawURL string) directFetch {
	taskCtx, cancel := context.WithTimeout(ctx, s.caps.BodyTaskTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.Pages.GetArticle(taskCtx, rawURL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		slog.Warn("article fetch failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return directFetch{reason: entity.DropBodyFetchFailed}
	}
	if !htmlContent(res.ContentType) {
		metrics.RecordContentFetchSkipped()
		slog.Info("skipping non-HTML article",
			slog.String("url", rawURL),
			slog.String("content_type", res.ContentType))
		return directFetch{reason: entity.DropBodyFetchFailed}
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(res.Body))

	body, err := s.Extractor.Extract(res.Body, res.FinalURL)
	if err != nil {
		slog.Info("body extraction failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return directFetch{reason: entity.DropExtractionFailed}
	}
	body, err = sanitize.Text(body)
	if err != nil {
		slog.Info("body rejected by input screen",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return directFetch{reason: entity.DropExtractionFailed}
	}

	title := s.Extractor.Title(res.Body)
	if title == "" {
		title = rawURL
	}
	article, err := entity.NewArticle(title, rawURL, sourceFromURL(res.FinalURL), "", time.Now())
	if err != nil {
		return directFetch{reason: entity.DropInvalidEntry}
	}
	_ = article.MarkFiltered()
	_ = article.MarkBodyFetched(body)
	return directFetch{article: article}
}

// sourceFromURL labels a direct article with its host, standing in for
// the publisher name a feed entry would carry.
func sourceFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
