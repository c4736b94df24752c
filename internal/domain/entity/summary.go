package entity

import "unicode/utf8"

// ArticleSummary is the serialized result of summarizing one article.
// Lengths are counted in runes so Korean text is measured the same way
// it is read.
type ArticleSummary struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Summary        string `json:"summary"`
	Source         string `json:"source"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
}

// NewArticleSummary builds the wire representation of a summarized article.
// The article must be in the Summarized state.
func NewArticleSummary(a *Article) (*ArticleSummary, error) {
	if a == nil {
		return nil, &ValidationError{Field: "article", Message: "article is required"}
	}
	if a.State != StateSummarized {
		return nil, &ValidationError{Field: "state", Message: "article has no summary"}
	}

	return &ArticleSummary{
		Title:          a.Title,
		URL:            a.URL,
		Summary:        a.Summary,
		Source:         a.Source,
		OriginalLength: utf8.RuneCountInString(a.Body),
		SummaryLength:  utf8.RuneCountInString(a.Summary),
	}, nil
}
