package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/resilience/retry"

	"github.com/google/uuid"
)

// WebhookConfig contains configuration for the digest webhook.
type WebhookConfig struct {
	// WebhookURL is the Incoming Webhook URL. It embeds the endpoint's
	// auth token and must never appear in logs or error messages.
	WebhookURL string

	// Timeout is the HTTP request timeout for webhook calls.
	Timeout time.Duration
}

// WebhookNotifier posts search digests to a Slack-compatible webhook.
type WebhookNotifier struct {
	config         WebhookConfig
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	retryBaseDelay time.Duration
}

// NewWebhookNotifier creates a WebhookNotifier with the given
// configuration. A zero Timeout falls back to the default.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	return &WebhookNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter:    NewRateLimiter(1.0, 1), // 1 req/s, burst of 1
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// WebhookPayload is the JSON body posted to the webhook, shaped as a
// Slack Block Kit message.
type WebhookPayload struct {
	Text   string  `json:"text"`   // Fallback text for notifications
	Blocks []Block `json:"blocks"` // Rich formatting blocks
}

// Block is a Block Kit block.
type Block struct {
	Type     string       `json:"type"`               // "section", "context", "divider"
	Text     *TextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []TextObject `json:"elements,omitempty"` // Elements (for context)
}

// TextObject is a Block Kit text object.
type TextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Block Kit limits, counted in runes.
	maxSectionRunes  = 3000
	maxContextRunes  = 2000
	maxFallbackRunes = 150

	// maxDigestArticles caps how many summaries one digest message shows.
	maxDigestArticles = 5

	truncationSuffix = "..."

	maxAttempts           = 2
	defaultRetryBaseDelay = 5 * time.Second
	defaultRetryAfter     = 5 * time.Second

	maxErrorBodyBytes = 4096
)

// digestTitle builds the digest headline in the digest language.
func digestTitle(digest *Digest) string {
	if digest.Language == "en" {
		return fmt.Sprintf("News digest: %s", digest.Query)
	}
	return fmt.Sprintf("뉴스 요약: %s", digest.Query)
}

// articleContext builds the per-article context line: source name plus
// original and summary lengths.
func articleContext(s *entity.ArticleSummary, language string) string {
	if language == "en" {
		return fmt.Sprintf("%s • %d chars summarized to %d", s.Source, s.OriginalLength, s.SummaryLength)
	}
	return fmt.Sprintf("%s • 원문 %d자, 요약 %d자", s.Source, s.OriginalLength, s.SummaryLength)
}

// digestFooter builds the closing context line: article counts and, when
// known, pipeline elapsed time.
func digestFooter(digest *Digest, shown int) string {
	total := len(digest.Summaries)

	var text string
	switch {
	case digest.Language == "en" && shown < total:
		text = fmt.Sprintf("%d of %d articles", shown, total)
	case digest.Language == "en":
		text = fmt.Sprintf("%d articles", total)
	case shown < total:
		text = fmt.Sprintf("총 %d건 중 %d건", total, shown)
	default:
		text = fmt.Sprintf("총 %d건", total)
	}

	if digest.Elapsed > 0 {
		text = fmt.Sprintf("%s • %s", text, digest.Elapsed.Round(time.Millisecond))
	}

	return text
}

// buildDigestPayload renders a digest as a Block Kit message.
//
// Layout: a headline section, then per article a section (linked title
// plus summary text) and a context line (source, lengths), then a
// divider and a footer context with totals. At most maxDigestArticles
// articles are rendered; the footer reports the full count.
func (w *WebhookNotifier) buildDigestPayload(digest *Digest) WebhookPayload {
	shown := digest.Summaries
	if len(shown) > maxDigestArticles {
		shown = shown[:maxDigestArticles]
	}

	title := digestTitle(digest)
	fallbackText := truncateText(title, maxFallbackRunes, truncationSuffix)

	blocks := make([]Block, 0, 2*len(shown)+3)
	blocks = append(blocks, Block{
		Type: "section",
		Text: &TextObject{
			Type: "mrkdwn",
			Text: truncateText(fmt.Sprintf("*%s*", title), maxSectionRunes, truncationSuffix),
		},
	})

	for _, s := range shown {
		sectionText := fmt.Sprintf("*<%s|%s>*\n%s", s.URL, s.Title, s.Summary)
		blocks = append(blocks,
			Block{
				Type: "section",
				Text: &TextObject{
					Type: "mrkdwn",
					Text: truncateText(sectionText, maxSectionRunes, truncationSuffix),
				},
			},
			Block{
				Type: "context",
				Elements: []TextObject{
					{
						Type: "mrkdwn",
						Text: truncateText(articleContext(s, digest.Language), maxContextRunes, truncationSuffix),
					},
				},
			},
		)
	}

	blocks = append(blocks,
		Block{Type: "divider"},
		Block{
			Type: "context",
			Elements: []TextObject{
				{
					Type: "mrkdwn",
					Text: truncateText(digestFooter(digest, len(shown)), maxContextRunes, truncationSuffix),
				},
			},
		},
	)

	return WebhookPayload{
		Text:   fallbackText,
		Blocks: blocks,
	}
}

// sendDigestRequest posts one digest to the webhook and classifies the
// response.
//
// Error types:
//   - 429: RateLimitError (retryable, carries the requested wait)
//   - 4xx (non-429): ClientError (non-retryable)
//   - 5xx: ServerError (retryable)
//   - Network error: wrapped transport error (retryable)
func (w *WebhookNotifier) sendDigestRequest(ctx context.Context, digest *Digest) error {
	payload := w.buildDigestPayload(digest)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Response bodies only feed error messages, so a small cap is enough.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := retry.ParseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter == 0 {
			retryAfter = defaultRetryAfter
		}
		return &RateLimitError{
			Message:    "webhook rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook client error %d: %s", resp.StatusCode, string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook server error %d: %s", resp.StatusCode, string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// sendWithRetry wraps sendDigestRequest with the retry policy.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429: sleep the requested wait, then retry
//   - Server errors (5xx) and network errors: linear backoff
//   - Client errors (4xx): fail immediately
//
// A 429 or server error on the final attempt fails without sleeping.
func (w *WebhookNotifier) sendWithRetry(ctx context.Context, digest *Digest) error {
	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := w.sendDigestRequest(ctx, digest)
		if err == nil {
			slog.Info("digest notification delivered",
				slog.String("request_id", requestID),
				slog.String("query", digest.Query),
				slog.Int("summaries", len(digest.Summaries)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			if attempt >= maxAttempts {
				break
			}
			slog.Warn("webhook rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("digest notification rejected by webhook",
				slog.String("request_id", requestID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := w.retryBaseDelay * time.Duration(attempt)
			slog.Warn("webhook request failed, retrying",
				slog.String("request_id", requestID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("digest notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("query", digest.Query),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("digest notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// IsEnabled always returns true; a WebhookNotifier is only constructed
// when a webhook URL is configured.
func (w *WebhookNotifier) IsEnabled() bool {
	return true
}

// NotifyDigest sends one digest to the configured webhook. This method
// implements the Notifier interface.
//
// It generates a request_id for tracing, waits for the client-side rate
// limiter, then posts with retry. Delivery failures are returned to the
// caller, who decides whether they matter; the search result itself is
// already complete by the time a digest is sent.
func (w *WebhookNotifier) NotifyDigest(ctx context.Context, digest *Digest) error {
	if digest == nil || len(digest.Summaries) == 0 {
		return fmt.Errorf("digest has no summaries")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting digest notification",
		slog.String("request_id", requestID),
		slog.String("query", digest.Query),
		slog.Int("summaries", len(digest.Summaries)))

	if err := w.rateLimiter.Allow(ctx); err != nil {
		slog.Error("rate limiter wait aborted",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter: %w", err)
	}

	return w.sendWithRetry(ctx, digest)
}
