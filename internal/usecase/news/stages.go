package news

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/observability/tracing"
	"glbaguni/internal/pkg/budget"
	"glbaguni/internal/pkg/sanitize"
)

// planFeeds selects the fan-out targets: registry order, at most
// MaxFeedsPerPublisher per publisher and MaxTotalFeeds overall.
func (s *Service) planFeeds() []*entity.Feed {
	plan := make([]*entity.Feed, 0, s.caps.MaxTotalFeeds)
	for _, pub := range s.Registry.All() {
		taken := 0
		for _, feedURL := range pub.Feeds {
			if taken == s.caps.MaxFeedsPerPublisher || len(plan) == s.caps.MaxTotalFeeds {
				break
			}
			f, err := entity.NewFeed(pub.Name, feedURL)
			if err != nil {
				slog.Warn("skipping invalid registry feed",
					slog.String("publisher", pub.Name),
					slog.String("feed_url", feedURL),
					slog.Any("error", err))
				continue
			}
			plan = append(plan, f)
			taken++
		}
		if len(plan) == s.caps.MaxTotalFeeds {
			break
		}
	}
	return plan
}

// fetchFeeds runs the feed tasks in parallel and merges their entries in
// plan order. It returns the merged entries and how many feeds delivered.
func (s *Service) fetchFeeds(ctx context.Context, bud *budget.Budget, plan []*entity.Feed) ([]*entity.Article, int) {
	if len(plan) == 0 {
		return nil, 0
	}

	ctx, span := tracing.GetTracer().Start(ctx, "news.feeds")
	defer span.End()

	stageCtx, cancel := bud.StageContext(ctx, s.caps.StageTimeout)
	defer cancel()

	perFeed := make([][]*entity.Article, len(plan))
	var fetched int64

	eg, egCtx := errgroup.WithContext(stageCtx)
	for i, f := range plan {
		i, f := i, f
		eg.Go(func() error {
			taskCtx, cancel := context.WithTimeout(egCtx, s.caps.FeedTaskTimeout)
			defer cancel()

			articles, err := s.Feeds.Fetch(taskCtx, f)
			if err != nil {
				slog.Warn("feed fetch failed",
					slog.String("publisher", f.Publisher),
					slog.String("feed_url", f.URL),
					slog.Any("error", err))
				return nil
			}
			perFeed[i] = articles
			atomic.AddInt64(&fetched, 1)
			return nil
		})
	}
	_ = eg.Wait()

	merged := make([]*entity.Article, 0, len(plan)*s.caps.MaxEntriesPerFeed)
	for _, articles := range perFeed {
		merged = append(merged, articles...)
	}
	span.SetAttributes(
		attribute.Int("feeds_planned", len(plan)),
		attribute.Int("feeds_fetched", int(atomic.LoadInt64(&fetched))),
		attribute.Int("entries", len(merged)),
	)
	return merged, int(atomic.LoadInt64(&fetched))
}

// filterByKeywords keeps entries whose title or raw feed summary contains
// any keyword, case-insensitively. The fetched body never participates in
// matching.
func filterByKeywords(articles []*entity.Article, keywords []string) []*entity.Article {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			lowered = append(lowered, strings.ToLower(k))
		}
	}

	matched := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if matchesAny(a.Title, lowered) || matchesAny(a.RawSummary, lowered) {
			if err := a.MarkFiltered(); err != nil {
				continue
			}
			matched = append(matched, a)
			continue
		}
		_ = a.Drop(entity.DropNoKeywordMatch)
	}
	return matched
}

func matchesAny(text string, lowered []string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, k := range lowered {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// dedupeByCanonical drops articles whose canonical URL was already seen.
// First occurrence wins, so feed order decides which copy survives.
func dedupeByCanonical(articles []*entity.Article) []*entity.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if _, dup := seen[a.CanonicalURL]; dup {
			_ = a.Drop(entity.DropDuplicateURL)
			continue
		}
		seen[a.CanonicalURL] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

// capArticles truncates the list to the requested article count and
// drops the overflow.
func capArticles(articles []*entity.Article, maxArticles int) []*entity.Article {
	if len(articles) <= maxArticles {
		return articles
	}
	for _, a := range articles[maxArticles:] {
		_ = a.Drop(entity.DropOverArticleCap)
	}
	return articles[:maxArticles]
}

// fetchBodies downloads and extracts every article body in parallel.
func (s *Service) fetchBodies(ctx context.Context, bud *budget.Budget, articles []*entity.Article) {
	if len(articles) == 0 {
		return
	}

	ctx, span := tracing.GetTracer().Start(ctx, "news.bodies")
	defer span.End()
	span.SetAttributes(attribute.Int("articles", len(articles)))

	stageCtx, cancel := bud.StageContext(ctx, s.caps.StageTimeout)
	defer cancel()

	eg, egCtx := errgroup.WithContext(stageCtx)
	for _, a := range articles {
		a := a
		eg.Go(func() error {
			s.fetchBody(egCtx, a)
			return nil
		})
	}
	_ = eg.Wait()
}

// fetchBody retrieves one article page and attaches the extracted text.
// Every failure drops the article and lets the rest of the batch continue.
func (s *Service) fetchBody(ctx context.Context, a *entity.Article) {
	taskCtx, cancel := context.WithTimeout(ctx, s.caps.BodyTaskTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.Pages.GetArticle(taskCtx, a.URL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		slog.Warn("article fetch failed",
			slog.String("url", a.URL),
			slog.Any("error", err))
		_ = a.Drop(entity.DropBodyFetchFailed)
		return
	}
	if !htmlContent(res.ContentType) {
		metrics.RecordContentFetchSkipped()
		slog.Info("skipping non-HTML article",
			slog.String("url", a.URL),
			slog.String("content_type", res.ContentType))
		_ = a.Drop(entity.DropBodyFetchFailed)
		return
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(res.Body))

	body, err := s.Extractor.Extract(res.Body, res.FinalURL)
	if err != nil {
		slog.Info("body extraction failed",
			slog.String("url", a.URL),
			slog.Any("error", err))
		_ = a.Drop(entity.DropExtractionFailed)
		return
	}

	// 본문은 LLM 프롬프트에 들어가므로 전송 전에 스크린을 거친다
	body, err = sanitize.Text(body)
	if err != nil {
		slog.Info("body rejected by input screen",
			slog.String("url", a.URL),
			slog.Any("error", err))
		_ = a.Drop(entity.DropExtractionFailed)
		return
	}
	_ = a.MarkBodyFetched(body)
}

// summarizeAll generates digests for every article that still has a body,
// bounded by the shared LLM semaphore. The last stage gets whatever
// budget remains.
func (s *Service) summarizeAll(ctx context.Context, bud *budget.Budget, articles []*entity.Article, language string) {
	pending := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.State == entity.StateBodyFetched {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return
	}

	ctx, span := tracing.GetTracer().Start(ctx, "news.summarize")
	defer span.End()
	span.SetAttributes(attribute.Int("articles", len(pending)))

	stageCtx, cancel := bud.StageContext(ctx, bud.Remaining())
	defer cancel()

	eg, egCtx := errgroup.WithContext(stageCtx)
	for _, a := range pending {
		a := a
		eg.Go(func() error {
			s.summarizeOne(egCtx, a, language)
			return nil
		})
	}
	_ = eg.Wait()
}

// summarizeOne runs one LLM call under the shared semaphore. A slot that
// never frees before the stage deadline drops the article instead of
// blocking the stage.
func (s *Service) summarizeOne(ctx context.Context, a *entity.Article, language string) {
	select {
	case s.llmSem <- struct{}{}:
	case <-ctx.Done():
		_ = a.Drop(entity.DropSummarizeFailed)
		return
	}
	defer func() { <-s.llmSem }()

	taskCtx, cancel := context.WithTimeout(ctx, s.caps.SummarizeTaskTimeout)
	defer cancel()

	start := time.Now()
	summary, err := s.Summarizer.Summarize(taskCtx, summaryInput(a), language)
	duration := time.Since(start)

	metrics.RecordSummarizationDuration(duration)
	if err != nil {
		metrics.RecordArticleSummarized(false)
		slog.Warn("summarization failed",
			slog.String("url", a.URL),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		_ = a.Drop(entity.DropSummarizeFailed)
		return
	}
	metrics.RecordArticleSummarized(true)
	_ = a.MarkSummarized(summary)
}

// summaryInput is what the summarizer sees. The headline anchors the
// model before the body text.
func summaryInput(a *entity.Article) string {
	return a.Title + "\n\n" + a.Body
}

// assemble collects the survivors in their post-dedup order.
func assemble(articles []*entity.Article) []*entity.ArticleSummary {
	summaries := make([]*entity.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		if a.State != entity.StateSummarized {
			continue
		}
		summary, err := entity.NewArticleSummary(a)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// summarizedOf returns the articles that finished the pipeline.
func summarizedOf(articles []*entity.Article) []*entity.Article {
	done := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.State == entity.StateSummarized {
			done = append(done, a)
		}
	}
	return done
}

// tallyOutcomes folds terminal article states into the stage tally and
// records the per-outcome metrics. An article dropped late in the
// pipeline still counts for the stages it passed.
func tallyOutcomes(t *Tally, articles []*entity.Article) {
	for _, a := range articles {
		switch a.State {
		case entity.StateSummarized:
			t.Matched++
			t.BodiesFetched++
			t.Summarized++
			metrics.RecordArticleOutcome("summarized")
		case entity.StateDropped:
			switch a.Reason {
			case entity.DropDuplicateURL, entity.DropOverArticleCap,
				entity.DropBodyFetchFailed, entity.DropExtractionFailed:
				t.Matched++
			case entity.DropSummarizeFailed:
				t.Matched++
				t.BodiesFetched++
			}
			if t.Dropped == nil {
				t.Dropped = make(map[string]int)
			}
			t.Dropped[string(a.Reason)]++
			metrics.RecordArticleOutcome(string(a.Reason))
		}
	}
}

// htmlContent reports whether a Content-Type is worth extracting. An
// empty header is common enough on news CDNs that it passes through and
// the extractor decides.
func htmlContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "html")
}
