// Package history records completed searches and summarizations for later
// browsing. The store is optional: constructed with a nil repository every
// write is a no-op and every read returns an empty page, so the search
// pipeline behaves the same with or without a database.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/repository"
)

const (
	// saveTimeout bounds a history write. Writes detach from the request
	// context so a client disconnect cannot abort a half-finished save.
	saveTimeout = 5 * time.Second

	defaultPerPage = 20
	maxPerPage     = 100
)

// Service provides search history use cases.
type Service struct {
	Repo repository.HistoryRepository
}

// NewService wires the history store. A nil repository disables history.
func NewService(repo repository.HistoryRepository) *Service {
	return &Service{Repo: repo}
}

// Enabled reports whether a history store is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.Repo != nil
}

// RecordSearch stores one row per summarized article of a completed search.
// With history disabled or nothing to store, the call returns nil.
func (s *Service) RecordSearch(ctx context.Context, userID, query, language string, keywords []string, articles []*entity.Article) error {
	if !s.Enabled() || len(articles) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.Repo.SaveSearch(ctx, userID, query, language, keywords, articles); err != nil {
		return fmt.Errorf("record search history: %w", err)
	}
	slog.Debug("search history recorded",
		slog.String("user_id", userID),
		slog.Int("articles", len(articles)))
	return nil
}

// RecordSummaries stores one row per article of a direct URL summarization.
func (s *Service) RecordSummaries(ctx context.Context, userID, language string, articles []*entity.Article) error {
	if !s.Enabled() || len(articles) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.Repo.SaveSummaries(ctx, userID, language, articles); err != nil {
		return fmt.Errorf("record summary history: %w", err)
	}
	slog.Debug("summary history recorded",
		slog.String("user_id", userID),
		slog.Int("articles", len(articles)))
	return nil
}

// List returns one page of the user's history, newest first. Disabled
// history returns an empty page with the clamped pagination echoed back.
func (s *Service) List(ctx context.Context, userID, language string, page, perPage int) (*repository.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	if !s.Enabled() {
		return &repository.HistoryPage{
			Records: []*entity.SearchRecord{},
			Page:    page,
			PerPage: perPage,
		}, nil
	}

	result, err := s.Repo.ListByUser(ctx, userID, language, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return result, nil
}
