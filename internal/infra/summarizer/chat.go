package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"glbaguni/internal/infra/llm"
)

// ChatSummarizer summarizes article text through an LLM chat client.
// Retries, circuit breaking, and timeouts live in the llm package; this
// layer owns prompting, postprocessing, and quality accounting.
type ChatSummarizer struct {
	client          llm.ChatClient
	config          Config
	metricsRecorder SummaryMetricsRecorder
}

// NewChat creates a summarizer on top of the given chat client.
func NewChat(client llm.ChatClient) *ChatSummarizer {
	cfg := LoadConfig()

	slog.Info("initialized chat summarizer",
		"provider", client.Provider(),
		"character_limit", cfg.CharacterLimit)

	return &ChatSummarizer{
		client:          client,
		config:          cfg,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize produces a 3-4 sentence digest in the requested language.
// Article text travels as the user message only; the system instruction
// is fixed per language.
func (s *ChatSummarizer) Summarize(ctx context.Context, text, language string) (string, error) {
	language = normalizeLanguage(language)

	reply, err := s.client.Chat(ctx, promptFor(language), text, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("summarizing text: %w", err)
	}

	summary := Postprocess(reply.Text)
	if summary == "" {
		return "", ErrEmptySummary
	}

	summaryLength := utf8.RuneCountInString(summary)
	withinLimit := summaryLength <= s.config.CharacterLimit
	quality := Score(text, summary)

	slog.Debug("summary generated",
		"provider", s.client.Provider(),
		"language", language,
		"summary_length", summaryLength,
		"quality", quality,
		"tokens_used", reply.TokensUsed)

	s.metricsRecorder.RecordLength(summaryLength)
	s.metricsRecorder.RecordDuration(reply.Latency)
	s.metricsRecorder.RecordCompliance(withinLimit)
	s.metricsRecorder.RecordQuality(quality)
	if !withinLimit {
		s.metricsRecorder.RecordLimitExceeded()
		slog.Warn("summary exceeds character limit",
			"summary_length", summaryLength,
			"limit", s.config.CharacterLimit)
	}

	return summary, nil
}
