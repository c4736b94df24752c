package db

import (
	"database/sql"
)

// MigrateUp creates the search history schema.
// All statements are idempotent so the migration can run on every startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS search_history (
    id              SERIAL PRIMARY KEY,
    user_id         TEXT NOT NULL,
    query           TEXT NOT NULL,
    article_title   TEXT NOT NULL,
    article_url     TEXT NOT NULL,
    article_source  TEXT,
    content_excerpt TEXT,
    summary_text    TEXT,
    language        VARCHAR(2) NOT NULL DEFAULT 'ko',
    original_length INTEGER NOT NULL DEFAULT 0,
    summary_length  INTEGER NOT NULL DEFAULT 0,
    keywords        JSONB,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// 사용자별 이력 조회는 항상 created_at DESC 순서로 읽는다
		`CREATE INDEX IF NOT EXISTS idx_search_history_user_created ON search_history(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_language ON search_history(language)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm 확장 활성화 (ILIKE 검색 가속용)
	// 이미 존재하거나 권한이 없는 경우 에러 무시
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)

	// 질의어 부분 일치 검색용 GIN 인덱스
	// pg_trgm 확장이 없으면 에러가 나므로 무시
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_search_history_query_gin ON search_history USING gin(query gin_trgm_ops)`)

	return nil
}

// MigrateDown rolls back the search history schema.
// Use with caution: this will delete all recorded history.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_search_history_query_gin`,
		`DROP INDEX IF EXISTS idx_search_history_language`,
		`DROP INDEX IF EXISTS idx_search_history_user_created`,
		`DROP TABLE IF EXISTS search_history`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
