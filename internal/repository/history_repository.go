package repository

import (
	"context"

	"glbaguni/internal/domain/entity"
)

// HistoryPage is one page of history records with pagination metadata.
type HistoryPage struct {
	Records    []*entity.SearchRecord
	TotalItems int64
	Page       int
	PerPage    int
}

type HistoryRepository interface {
	// SaveSearch records a completed news search: one row per summarized
	// article, all sharing the original query and its extracted keywords.
	SaveSearch(ctx context.Context, userID, query, language string, keywords []string, articles []*entity.Article) error
	// SaveSummaries records a direct URL summarization. The rows carry no
	// query and no keywords.
	SaveSummaries(ctx context.Context, userID, language string, articles []*entity.Article) error
	// ListByUser returns one page of a user's history, newest first.
	// An empty language returns records in every language.
	ListByUser(ctx context.Context, userID, language string, page, perPage int) (*HistoryPage, error)
}
