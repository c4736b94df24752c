package summarizer

import (
	"context"
	"strings"
)

// NoOp passes article text through untouched, truncated to a summary-ish
// length. Used in development and when summarization is disabled.
type NoOp struct{}

// NewNoOp creates a passthrough summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the head of the text. The language is ignored; the
// text stays in whatever language it arrived in.
func (n *NoOp) Summarize(_ context.Context, text, _ string) (string, error) {
	const maxLength = 500

	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLength {
		return string(runes), nil
	}
	return string(runes[:maxLength]) + "...", nil
}
