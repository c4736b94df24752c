package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeed(t *testing.T) {
	feed, err := NewFeed("한겨레", "https://www.hani.co.kr/rss/")
	require.NoError(t, err)
	assert.Equal(t, "한겨레", feed.Publisher)
	assert.Equal(t, "https://www.hani.co.kr/rss/", feed.URL)

	_, err = NewFeed("", "https://www.hani.co.kr/rss/")
	assert.Error(t, err)

	_, err = NewFeed("한겨레", "not-a-url")
	assert.Error(t, err)
}

func TestNewSearchRecord(t *testing.T) {
	article, err := NewArticle("반도체 뉴스", "https://example.com/a", "연합뉴스", "", time.Time{})
	require.NoError(t, err)
	require.NoError(t, article.MarkFiltered())
	require.NoError(t, article.MarkBodyFetched("본문"))
	require.NoError(t, article.MarkSummarized("짧은 요약."))

	record, err := NewSearchRecord("user-1", "반도체 뉴스", "ko", []string{"반도체", "삼성전자"}, article)
	require.NoError(t, err)

	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "반도체 뉴스", record.Query)
	assert.Equal(t, "반도체 뉴스", record.ArticleTitle)
	assert.Equal(t, "https://example.com/a", record.ArticleURL)
	assert.Equal(t, "연합뉴스", record.ArticleSource)
	assert.Equal(t, "본문", record.ContentExcerpt)
	assert.Equal(t, "짧은 요약.", record.SummaryText)
	assert.Equal(t, "ko", record.Language)
	assert.Equal(t, 2, record.OriginalLength)
	assert.Equal(t, 6, record.SummaryLength)
	assert.Equal(t, []string{"반도체", "삼성전자"}, record.Keywords)
}

func TestNewSearchRecord_ExcerptTruncation(t *testing.T) {
	article, err := NewArticle("제목", "https://example.com/a", "KBS", "", time.Time{})
	require.NoError(t, err)
	require.NoError(t, article.MarkFiltered())

	long := strings.Repeat("가", excerptLimit+100)
	require.NoError(t, article.MarkBodyFetched(long))
	require.NoError(t, article.MarkSummarized("요약."))

	record, err := NewSearchRecord("user-1", "질의", "ko", nil, article)
	require.NoError(t, err)

	runes := []rune(record.ContentExcerpt)
	assert.Len(t, runes, excerptLimit+3)
	assert.True(t, strings.HasSuffix(record.ContentExcerpt, "..."))
	assert.Equal(t, excerptLimit+100, record.OriginalLength)
	assert.Equal(t, "요약.", record.SummaryText)
}

func TestNewSearchRecord_Invalid(t *testing.T) {
	article, err := NewArticle("제목", "https://example.com/a", "SBS", "", time.Time{})
	require.NoError(t, err)

	// Missing user.
	_, err = NewSearchRecord("", "질의", "ko", nil, nil)
	assert.Error(t, err)

	// Article not summarized yet.
	_, err = NewSearchRecord("user-1", "질의", "ko", nil, article)
	assert.Error(t, err)

	// Nil article.
	_, err = NewSearchRecord("user-1", "질의", "ko", nil, nil)
	assert.Error(t, err)
}
