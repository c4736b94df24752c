package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/resilience/circuitbreaker"
	"glbaguni/internal/resilience/retry"
)

// Anthropic is the ChatClient backed by the Anthropic messages API.
type Anthropic struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewAnthropic creates an Anthropic client with the standard endpoint.
// SDK-internal retries are off; the shared retry loop owns the attempt
// budget.
func NewAnthropic(apiKey string, cfg Config) *Anthropic {
	return NewAnthropicWithClient(anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	), cfg)
}

// NewAnthropicWithClient creates an Anthropic client around a
// preconfigured SDK client. Tests use this to point at a local server.
func NewAnthropicWithClient(client anthropic.Client, cfg Config) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
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
	return &Anthropic{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.AnthropicAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		config:         cfg,
	}
}

// Provider returns the provider label used in logs and metrics.
func (a *Anthropic) Provider() string {
	return ProviderAnthropic
}

// Chat sends one system+user exchange and returns the completion.
func (a *Anthropic) Chat(ctx context.Context, systemMsg, userMsg string, opts Options) (*Reply, error) {
	opts = opts.withDefaults(a.config)
	userMsg = truncateUserMessage(userMsg)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	requestID := uuid.New().String()
	start := time.Now()

	var reply *Reply
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.doChat(ctx, requestID, systemMsg, userMsg, opts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("anthropic circuit breaker open, request rejected",
					"request_id", requestID,
					"breaker", a.circuitBreaker.Name())
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
		metrics.RecordLLMRequest(ProviderAnthropic, statusLabel(mapped), duration)
		slog.Error("anthropic chat failed",
			"request_id", requestID,
			"model", a.config.Model,
			"error", mapped)
		return nil, fmt.Errorf("anthropic chat: %w", mapped)
	}

	metrics.RecordLLMRequest(ProviderAnthropic, "success", duration)
	return reply, nil
}

// doChat performs one API round trip.
func (a *Anthropic) doChat(ctx context.Context, requestID, systemMsg, userMsg string, opts Options) (*Reply, error) {
	start := time.Now()

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.config.Model),
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(float64(opts.Temperature)),
		System: []anthropic.TextBlockParam{
			{Text: systemMsg},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})
	latency := time.Since(start)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	if string(message.StopReason) == "refusal" {
		return nil, fmt.Errorf("%w: model refused", ErrEmptyResponse)
	}
	if len(message.Content) == 0 {
		return nil, ErrEmptyResponse
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("%w: first content block is not text", ErrEmptyResponse)
	}
	text := strings.TrimSpace(textBlock.Text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	tokensUsed := int(message.Usage.InputTokens + message.Usage.OutputTokens)
	slog.Debug("anthropic chat completed",
		"request_id", requestID,
		"model", a.config.Model,
		"reply_chars", len([]rune(text)),
		"tokens_used", tokensUsed,
		"latency", latency)

	return &Reply{
		Text:       text,
		TokensUsed: tokensUsed,
		Latency:    latency,
	}, nil
}

// mapAnthropicError flattens SDK error types into *retry.HTTPError,
// keeping the Retry-After hint when the response carried one.
func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = retry.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return &retry.HTTPError{
			StatusCode: apiErr.StatusCode,
			Message:    http.StatusText(apiErr.StatusCode),
			RetryAfter: retryAfter,
		}
	}
	return err
}
