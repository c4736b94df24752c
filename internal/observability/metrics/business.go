package metrics

import (
	"time"

	"glbaguni/internal/observability/slo"
)

// RecordFeedFetched records the outcome of one feed download attempt.
func RecordFeedFetched(publisher string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	FeedFetchesTotal.WithLabelValues(publisher, result).Inc()
}

// RecordFeedFetchDuration records the time taken to download and parse one feed.
func RecordFeedFetchDuration(publisher string, duration time.Duration) {
	FeedFetchDuration.WithLabelValues(publisher).Observe(duration.Seconds())
}

// RecordFeedFetchError records a feed fetch error.
// errorType should be a stable taxonomy value such as "timeout", "dns",
// "connect", "tls", "http_status", "too_many_redirects", or "body_too_large".
func RecordFeedFetchError(publisher, errorType string) {
	FeedFetchErrors.WithLabelValues(publisher, errorType).Inc()
}

// RecordFeedEntries records the number of entries parsed out of one feed.
func RecordFeedEntries(publisher string, count int) {
	if count <= 0 {
		return
	}
	FeedEntriesTotal.WithLabelValues(publisher).Add(float64(count))
}

// RecordArticleOutcome records the final pipeline outcome of one article.
// The outcome is "summarized" or a drop reason like "no_keyword_match".
func RecordArticleOutcome(outcome string) {
	ArticleOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordArticleSummarized records the result of an article summarization operation.
// Status should be either "success" or "failure".
func RecordArticleSummarized(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArticlesSummarizedTotal.WithLabelValues(status).Inc()
}

// RecordSummarizationDuration records the time taken to summarize an article.
// This helps identify performance issues with the chat completion service.
func RecordSummarizationDuration(duration time.Duration) {
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordSearch records the outcome and duration of one search request.
// Status should be "success", "no_results", or "error". The duration
// also feeds the SLO latency window.
func RecordSearch(status string, duration time.Duration) {
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(duration.Seconds())
	slo.ObserveSearch(duration.Seconds())
}

// RecordContentFetchSuccess records a successful article content fetch.
// Size is the extracted content length in bytes.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed article content fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a content fetch that was not attempted,
// for example when the article was dropped before the body stage.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordLLMRequest records a chat completion call.
// Status should be "success", "rate_limited", "timeout", or "error".
func RecordLLMRequest(provider, status string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordKeywordExtraction records which cascade step produced the keywords.
// Method should be "llm", "regex", or "tokens".
func RecordKeywordExtraction(method string) {
	KeywordExtractionsTotal.WithLabelValues(method).Inc()
}

// UpdateRegisteredFeeds updates the gauge of registry feed URLs.
// Called once at startup after the publisher registry is built.
func UpdateRegisteredFeeds(count int) {
	RegisteredFeedsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a history store query.
// Operation should describe the query type (e.g., "save_search", "list_by_user").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
