// Package news provides the HTTP handlers for the two pipeline
// endpoints: natural-language news search and direct URL summarization.
package news

import (
	"context"

	"glbaguni/internal/domain/entity"
	newsUC "glbaguni/internal/usecase/news"
)

// Pipeline is the slice of the news usecase the HTTP layer calls.
type Pipeline interface {
	ProcessQuery(ctx context.Context, req newsUC.Request) (*newsUC.Result, error)
	SummarizeArticles(ctx context.Context, req newsUC.SummarizeRequest) (*newsUC.SummarizeResult, error)
}

// SearchRequest is the body of POST /news/search.
type SearchRequest struct {
	Query       string `json:"query" example:"요즘 반도체 뉴스 알려줘"`
	MaxArticles int    `json:"max_articles" example:"10"`
	Language    string `json:"language" example:"ko"`
	UserID      string `json:"user_id,omitempty" example:"user-1234"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	RequestID      string                   `json:"request_id" example:"0c2f7d2e-4b7a-4af2-9c3e-6f28a1d2b9c4"`
	Query          string                   `json:"query" example:"요즘 반도체 뉴스 알려줘"`
	Language       string                   `json:"language" example:"ko"`
	Keywords       []string                 `json:"keywords" example:"반도체,뉴스"`
	Articles       []*entity.ArticleSummary `json:"articles"`
	TotalArticles  int                      `json:"total_articles" example:"3"`
	Tally          newsUC.Tally             `json:"tally"`
	ElapsedSeconds float64                  `json:"elapsed_seconds" example:"12.7"`
	UserID         string                   `json:"user_id,omitempty" example:"user-1234"`
}

// SummarizeHTTPRequest is the body of POST /summarize. Recipient is kept
// from the original wire format; without a user_id it doubles as the
// history key.
type SummarizeHTTPRequest struct {
	URLs      []string `json:"urls"`
	Language  string   `json:"language" example:"ko"`
	Recipient string   `json:"recipient,omitempty" example:"reader@example.com"`
	UserID    string   `json:"user_id,omitempty" example:"user-1234"`
}

// SummarizeResponse is the body of a successful summarize call.
type SummarizeResponse struct {
	RequestID      string                   `json:"request_id" example:"0c2f7d2e-4b7a-4af2-9c3e-6f28a1d2b9c4"`
	Language       string                   `json:"language" example:"ko"`
	Summaries      []*entity.ArticleSummary `json:"summaries"`
	TotalRequested int                      `json:"total_requested" example:"3"`
	TotalSummaries int                      `json:"total_summaries" example:"2"`
	Dropped        map[string]int           `json:"dropped,omitempty"`
	ElapsedSeconds float64                  `json:"elapsed_seconds" example:"8.4"`
	UserID         string                   `json:"user_id,omitempty" example:"user-1234"`
}
