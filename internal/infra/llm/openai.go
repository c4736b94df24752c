package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/resilience/circuitbreaker"
	"glbaguni/internal/resilience/retry"
)

// OpenAI is the ChatClient backed by the OpenAI chat completions API.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewOpenAI creates an OpenAI client with the standard endpoint.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	return NewOpenAIWithClient(openai.NewClient(apiKey), cfg)
}

// NewOpenAIWithClient creates an OpenAI client around a preconfigured
// SDK client. Tests use this to point at a local server.
func NewOpenAIWithClient(client *openai.Client, cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &OpenAI{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		config:         cfg,
	}
}

// Provider returns the provider label used in logs and metrics.
func (o *OpenAI) Provider() string {
	return ProviderOpenAI
}

// Chat sends one system+user exchange and returns the completion.
func (o *OpenAI) Chat(ctx context.Context, systemMsg, userMsg string, opts Options) (*Reply, error) {
	opts = opts.withDefaults(o.config)
	userMsg = truncateUserMessage(userMsg)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	requestID := uuid.New().String()
	start := time.Now()

	var reply *Reply
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doChat(ctx, requestID, systemMsg, userMsg, opts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai circuit breaker open, request rejected",
					"request_id", requestID,
					"breaker", o.circuitBreaker.Name())
			}
			return err
		}
		r, ok := result.(*Reply)
		if !ok {
			return fmt.Errorf("unexpected result type from circuit breaker: %T", result)
		}
		reply = r
		return nil
	})

	duration := time.Since(start)
	if retryErr != nil {
		mapped := mapFinalError(retryErr)
		metrics.RecordLLMRequest(ProviderOpenAI, statusLabel(mapped), duration)
		slog.Error("openai chat failed",
			"request_id", requestID,
			"model", o.config.Model,
			"error", mapped)
		return nil, fmt.Errorf("openai chat: %w", mapped)
	}

	metrics.RecordLLMRequest(ProviderOpenAI, "success", duration)
	return reply, nil
}

// doChat performs one API round trip. Failures come back as
// *retry.HTTPError where a status is known, so the retry loop can tell
// a 429 from a hard 400.
func (o *OpenAI) doChat(ctx context.Context, requestID, systemMsg, userMsg string, opts Options) (*Reply, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	})
	latency := time.Since(start)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, fmt.Errorf("%w: content filtered", ErrEmptyResponse)
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	slog.Debug("openai chat completed",
		"request_id", requestID,
		"model", o.config.Model,
		"reply_chars", len([]rune(text)),
		"tokens_used", resp.Usage.TotalTokens,
		"latency", latency)

	return &Reply{
		Text:       text,
		TokensUsed: resp.Usage.TotalTokens,
		Latency:    latency,
	}, nil
}

// mapOpenAIError flattens SDK error types into *retry.HTTPError so the
// retry classifier sees the status code. Context and transport errors
// pass through for the classifier's own checks.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.HTTPError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
		}
	}
	return err
}
