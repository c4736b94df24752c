// Package summarizer turns extracted article text into short digests.
// The production implementation talks to an LLM through the llm package;
// NoOp serves development and disabled deployments. Summaries are
// postprocessed and scored here so prompt quirks never leak to callers.
package summarizer

import (
	"context"
	"errors"
	"log/slog"

	"glbaguni/internal/infra/llm"
	"glbaguni/internal/pkg/config"
)

// Summarizer produces a 3-4 sentence digest of article text in the
// requested language ("ko" or "en").
type Summarizer interface {
	Summarize(ctx context.Context, text, language string) (string, error)
}

// ErrEmptySummary marks a model response that postprocessing reduced to
// nothing.
var ErrEmptySummary = errors.New("summary empty after postprocessing")

// NewFromEnv builds the configured summarizer. SUMMARIZER_DISABLED=true
// selects NoOp; otherwise the LLM client is constructed, and credential
// problems surface here so startup can abort.
func NewFromEnv() (Summarizer, error) {
	disabled := config.LoadEnvBool("SUMMARIZER_DISABLED", false)
	for _, w := range disabled.Warnings {
		slog.Warn("config load warning", "key", "SUMMARIZER_DISABLED", "warning", w)
	}
	if disabled.Value.(bool) {
		slog.Info("summarizer disabled, using passthrough")
		return NewNoOp(), nil
	}

	client, err := llm.NewFromEnv()
	if err != nil {
		return nil, err
	}
	return NewChat(client), nil
}
