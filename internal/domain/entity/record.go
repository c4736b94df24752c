package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// excerptLimit is the maximum stored excerpt length in runes.
const excerptLimit = 500

// SearchRecord is one row of a user's search history: the query that was
// asked, the article it produced, the generated summary, and a short
// excerpt of the article body.
type SearchRecord struct {
	ID             int64
	UserID         string
	Query          string
	ArticleTitle   string
	ArticleURL     string
	ArticleSource  string
	ContentExcerpt string
	SummaryText    string
	Language       string
	OriginalLength int
	SummaryLength  int
	Keywords       []string
	CreatedAt      time.Time
}

// NewSearchRecord builds a history row from a summarized article. The
// body excerpt is cut at the excerpt limit with an ellipsis marker;
// lengths are counted in runes.
func NewSearchRecord(userID, query, language string, keywords []string, a *Article) (*SearchRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "user_id is required"}
	}
	if a == nil {
		return nil, &ValidationError{Field: "article", Message: "article is required"}
	}
	if a.State != StateSummarized {
		return nil, &ValidationError{Field: "state", Message: "article has no summary"}
	}

	return &SearchRecord{
		UserID:         userID,
		Query:          query,
		ArticleTitle:   a.Title,
		ArticleURL:     a.URL,
		ArticleSource:  a.Source,
		ContentExcerpt: excerpt(a.Body, excerptLimit),
		SummaryText:    a.Summary,
		Language:       language,
		OriginalLength: utf8.RuneCountInString(a.Body),
		SummaryLength:  utf8.RuneCountInString(a.Summary),
		Keywords:       keywords,
	}, nil
}

// excerpt truncates s to limit runes, appending "..." when cut.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
