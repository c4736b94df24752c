package news

import (
	"fmt"

	"glbaguni/internal/infra/summarizer"
)

// FatalError is a whole-request pipeline failure. Handlers log through
// Error and answer the client with UserMessage.
type FatalError interface {
	error
	UserMessage() string
}

// NoKeywordsError means the query produced no usable search terms even
// after every extraction fallback.
type NoKeywordsError struct {
	RequestID string
	Language  string
}

func (e *NoKeywordsError) Error() string {
	return fmt.Sprintf("no keywords extracted (request_id=%s)", e.RequestID)
}

// UserMessage returns the short localized failure text.
func (e *NoKeywordsError) UserMessage() string {
	return noNewsMessage(e.Language)
}

// AllFeedsFailedError means not a single feed fetch succeeded.
type AllFeedsFailedError struct {
	RequestID string
	Language  string
	Keywords  []string
	Tally     Tally
}

func (e *AllFeedsFailedError) Error() string {
	return fmt.Sprintf("all %d feeds failed (request_id=%s)", e.Tally.FeedsPlanned, e.RequestID)
}

// UserMessage returns the short localized failure text.
func (e *AllFeedsFailedError) UserMessage() string {
	return noNewsMessage(e.Language)
}

// NoResultsError means the pipeline finished without a single summary.
// Keywords and the tally stay attached for diagnostics.
type NoResultsError struct {
	RequestID string
	Language  string
	Keywords  []string
	Tally     Tally
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no summaries produced from %d discovered articles (request_id=%s)",
		e.Tally.Discovered, e.RequestID)
}

// UserMessage returns the short localized failure text.
func (e *NoResultsError) UserMessage() string {
	return noNewsMessage(e.Language)
}

func noNewsMessage(language string) string {
	if language == summarizer.LanguageEnglish {
		return "No related news found"
	}
	return "관련 뉴스를 찾을 수 없습니다"
}
