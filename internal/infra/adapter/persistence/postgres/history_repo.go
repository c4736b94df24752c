// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"glbaguni/internal/common/pagination"
	"glbaguni/internal/domain/entity"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/repository"
	"glbaguni/internal/resilience/circuitbreaker"
)

const (
	// insertColumnCount is the number of columns written per history row.
	insertColumnCount = 11

	defaultPerPage = 20
	maxPerPage     = 100
)

// HistoryRepo is the PostgreSQL implementation of repository.HistoryRepository.
// Reads and writes run through a circuit breaker so a struggling database
// degrades history recording instead of taking the search pipeline with it.
type HistoryRepo struct {
	db *circuitbreaker.DBCircuitBreaker
}

func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// SaveSearch records a completed news search as one row per summarized
// article. All rows share the query, language and extracted keywords.
func (repo *HistoryRepo) SaveSearch(ctx context.Context, userID, query, language string, keywords []string, articles []*entity.Article) error {
	if err := repo.saveRecords(ctx, "save_search", userID, query, language, keywords, articles); err != nil {
		return fmt.Errorf("SaveSearch: %w", err)
	}
	return nil
}

// SaveSummaries records a direct URL summarization. The rows carry no
// query and no keywords.
func (repo *HistoryRepo) SaveSummaries(ctx context.Context, userID, language string, articles []*entity.Article) error {
	if err := repo.saveRecords(ctx, "save_summaries", userID, "", language, nil, articles); err != nil {
		return fmt.Errorf("SaveSummaries: %w", err)
	}
	return nil
}

// saveRecords inserts every article as one history row in a single batch
// statement. One statement keeps the write atomic and lets it pass through
// the circuit breaker, which does not wrap transactions.
func (repo *HistoryRepo) saveRecords(ctx context.Context, operation, userID, query, language string, keywords []string, articles []*entity.Article) error {
	if len(articles) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery(operation, time.Since(start)) }()

	// 키워드가 없으면 NULL로 저장한다
	var keywordsJSON interface{}
	if len(keywords) > 0 {
		data, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		keywordsJSON = data
	}

	args := make([]interface{}, 0, len(articles)*insertColumnCount)
	for _, article := range articles {
		record, err := entity.NewSearchRecord(userID, query, language, keywords, article)
		if err != nil {
			return err
		}
		args = append(args,
			record.UserID,
			record.Query,
			record.ArticleTitle,
			record.ArticleURL,
			record.ArticleSource,
			record.ContentExcerpt,
			record.SummaryText,
			record.Language,
			record.OriginalLength,
			record.SummaryLength,
			keywordsJSON,
		)
	}

	const insertQuery = `
INSERT INTO search_history (
    user_id, query, article_title, article_url, article_source,
    content_excerpt, summary_text, language, original_length,
    summary_length, keywords
) VALUES `
	stmt := insertQuery + insertPlaceholders(len(articles), insertColumnCount)

	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != int64(len(articles)) {
		return fmt.Errorf("expected %d rows inserted, got %d", len(articles), n)
	}
	return nil
}

// ListByUser returns one page of a user's history ordered newest first.
// An empty language returns records in every language.
func (repo *HistoryRepo) ListByUser(ctx context.Context, userID, language string, page, perPage int) (*repository.HistoryPage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &entity.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_by_user", time.Since(start)) }()

	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	if language != "" {
		where += " AND language = $2"
		args = append(args, language)
	}

	var total int64
	countStmt := "SELECT COUNT(*) FROM search_history " + where
	if err := repo.db.QueryRowContext(ctx, countStmt, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("ListByUser: count: %w", err)
	}

	result := &repository.HistoryPage{
		Records:    make([]*entity.SearchRecord, 0, perPage),
		TotalItems: total,
		Page:       page,
		PerPage:    perPage,
	}
	if total == 0 {
		return result, nil
	}

	listStmt := fmt.Sprintf(`
SELECT id, user_id, query, article_title, article_url, article_source,
       content_excerpt, summary_text, language, original_length,
       summary_length, keywords, created_at
FROM search_history
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, perPage, pagination.CalculateOffset(page, perPage))

	rows, err := repo.db.QueryContext(ctx, listStmt, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		record, err := scanSearchRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		result.Records = append(result.Records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: rows: %w", err)
	}
	return result, nil
}

func scanSearchRecord(rows *sql.Rows) (*entity.SearchRecord, error) {
	var (
		record       entity.SearchRecord
		source       sql.NullString
		contentText  sql.NullString
		summaryText  sql.NullString
		keywordsJSON []byte
	)
	if err := rows.Scan(
		&record.ID,
		&record.UserID,
		&record.Query,
		&record.ArticleTitle,
		&record.ArticleURL,
		&source,
		&contentText,
		&summaryText,
		&record.Language,
		&record.OriginalLength,
		&record.SummaryLength,
		&keywordsJSON,
		&record.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("Scan: %w", err)
	}
	record.ArticleSource = source.String
	record.ContentExcerpt = contentText.String
	record.SummaryText = summaryText.String
	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &record.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}
	return &record, nil
}

// insertPlaceholders builds the VALUES placeholders for a batch insert:
// ($1, ..., $11), ($12, ..., $22), ... for rowCount rows of columnCount
// numbered parameters each.
func insertPlaceholders(rowCount, columnCount int) string {
	var b strings.Builder
	param := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for col := 0; col < columnCount; col++ {
			if col > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", param)
			param++
		}
		b.WriteString(")")
	}
	return b.String()
}
