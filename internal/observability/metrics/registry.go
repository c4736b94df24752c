package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// News pipeline metrics track feed discovery, article processing, and search outcomes
var (
	// RegisteredFeedsTotal tracks the number of feed URLs in the publisher registry
	RegisteredFeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registered_feeds_total",
			Help: "Number of feed URLs in the publisher registry",
		},
	)

	// FeedFetchesTotal counts feed download attempts per publisher and result
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of RSS/Atom feed download attempts",
		},
		[]string{"publisher", "result"}, // result: success, failure
	)

	// FeedFetchDuration measures time to download and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to download and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
		[]string{"publisher"},
	)

	// FeedFetchErrors counts feed download errors by publisher and error type
	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch errors",
		},
		[]string{"publisher", "error_type"},
	)

	// FeedEntriesTotal counts feed entries seen per publisher
	FeedEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_entries_total",
			Help: "Total number of feed entries parsed",
		},
		[]string{"publisher"},
	)

	// ArticleOutcomesTotal counts per-article pipeline outcomes.
	// Outcomes are "summarized" or a drop reason such as "no_keyword_match".
	ArticleOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_outcomes_total",
			Help: "Total number of articles by final pipeline outcome",
		},
		[]string{"outcome"},
	)

	// ArticlesSummarizedTotal counts articles summarized by status
	ArticlesSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_summarized_total",
			Help: "Total number of articles summarized",
		},
		[]string{"status"},
	)

	// SummarizationDuration measures time to summarize an article
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken to summarize an article",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SearchesTotal counts search requests by outcome
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of news search requests",
		},
		[]string{"status"}, // status: success, no_results, error
	)

	// SearchDuration measures end-to-end search pipeline duration
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end duration of a news search",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
	)

	// ContentFetchAttemptsTotal counts article body fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 4194304, // up to the 4MiB body cap
			},
		},
	)
)

// LLM metrics track chat completion calls and keyword extraction fallbacks
var (
	// LLMRequestsTotal counts chat completion calls by provider and status
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of chat completion requests",
		},
		[]string{"provider", "status"}, // status: success, rate_limited, timeout, error
	)

	// LLMRequestDuration measures chat completion call duration
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Chat completion request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		},
		[]string{"provider"},
	)

	// KeywordExtractionsTotal counts keyword extractions by the method that produced them
	KeywordExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_extractions_total",
			Help: "Total number of keyword extractions by method",
		},
		[]string{"method"}, // method: llm, regex, tokens
	)
)

// Database metrics track history store performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
