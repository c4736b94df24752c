package entity

import "strings"

// Feed represents one RSS/Atom feed URL belonging to a publisher.
// Feeds are registered statically in code; there is no runtime CRUD.
type Feed struct {
	Publisher string
	URL       string
}

// NewFeed validates the publisher label and feed URL.
func NewFeed(publisher, feedURL string) (*Feed, error) {
	publisher = strings.TrimSpace(publisher)
	if publisher == "" {
		return nil, &ValidationError{Field: "publisher", Message: "publisher is required"}
	}
	if err := ValidateURL(feedURL); err != nil {
		return nil, err
	}
	return &Feed{Publisher: publisher, URL: feedURL}, nil
}
