package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"glbaguni/internal/resilience/retry"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 400, cfg.MaxTokens)
	assert.InDelta(t, 0.3, float64(cfg.Temperature), 0.001)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-3-5-sonnet-20241022")
	t.Setenv("LLM_MAX_TOKENS", "800")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_TIMEOUT", "45s")

	cfg := LoadConfig()

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model)
	assert.Equal(t, 800, cfg.MaxTokens)
	assert.InDelta(t, 0.7, float64(cfg.Temperature), 0.001)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_MAX_TOKENS", "100000")
	t.Setenv("LLM_TEMPERATURE", "2.5")
	t.Setenv("LLM_TIMEOUT", "0s")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 400, cfg.MaxTokens)
	assert.InDelta(t, 0.3, float64(cfg.Temperature), 0.001)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfig_AnthropicDefaultModel(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "")

	cfg := LoadConfig()

	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.Model)
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		envKey   string
		envValue string
		wantErr  string
	}{
		{"openai valid", ProviderOpenAI, "OPENAI_API_KEY", "sk-" + strings.Repeat("a", 40), ""},
		{"openai missing", ProviderOpenAI, "OPENAI_API_KEY", "", "OPENAI_API_KEY is not set"},
		{"openai wrong prefix", ProviderOpenAI, "OPENAI_API_KEY", "key-" + strings.Repeat("a", 40), "does not look like"},
		{"openai too short", ProviderOpenAI, "OPENAI_API_KEY", "sk-abc", "does not look like"},
		{"anthropic valid", ProviderAnthropic, "ANTHROPIC_API_KEY", "sk-ant-test", ""},
		{"anthropic missing", ProviderAnthropic, "ANTHROPIC_API_KEY", "", "ANTHROPIC_API_KEY is not set"},
		{"unknown provider", "gemini", "OPENAI_API_KEY", "", "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			err := ValidateCredentials(tt.provider)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	cfg := Config{MaxTokens: 400, Temperature: 0.3, Timeout: 30 * time.Second}

	filled := Options{}.withDefaults(cfg)
	assert.Equal(t, 400, filled.MaxTokens)
	assert.InDelta(t, 0.3, float64(filled.Temperature), 0.001)
	assert.Equal(t, 30*time.Second, filled.Timeout)

	kept := Options{MaxTokens: 100, Temperature: 0.9, Timeout: 5 * time.Second}.withDefaults(cfg)
	assert.Equal(t, 100, kept.MaxTokens)
	assert.InDelta(t, 0.9, float64(kept.Temperature), 0.001)
	assert.Equal(t, 5*time.Second, kept.Timeout)
}

func TestTruncateUserMessage(t *testing.T) {
	short := "짧은 기사 본문"
	assert.Equal(t, short, truncateUserMessage(short))

	exact := strings.Repeat("가", MaxUserChars)
	assert.Equal(t, exact, truncateUserMessage(exact))

	long := strings.Repeat("가", MaxUserChars+500)
	got := truncateUserMessage(long)
	gotRunes := []rune(got)
	assert.Len(t, gotRunes, MaxUserChars+len(truncationMarker))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("가", MaxUserChars), string(gotRunes[:MaxUserChars]))
}

func TestMapFinalError(t *testing.T) {
	assert.NoError(t, mapFinalError(nil))

	cancelled := mapFinalError(fmt.Errorf("retry aborted: %w", context.Canceled))
	assert.ErrorIs(t, cancelled, ErrCancelled)

	timedOut := mapFinalError(fmt.Errorf("attempt failed: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, timedOut, ErrTimeout)

	rateLimited := mapFinalError(fmt.Errorf("max retry attempts (3) exceeded: %w",
		&retry.HTTPError{StatusCode: 429, Message: "Too Many Requests", RetryAfter: 7 * time.Second}))
	var rlErr *RateLimitedError
	assert.ErrorAs(t, rateLimited, &rlErr)
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)

	apiFailed := mapFinalError(&retry.HTTPError{StatusCode: 500, Message: "Internal Server Error"})
	var apiErr *APIError
	assert.ErrorAs(t, apiFailed, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Internal Server Error", apiErr.Message)

	empty := mapFinalError(ErrEmptyResponse)
	assert.ErrorIs(t, empty, ErrEmptyResponse)

	plain := errors.New("boom")
	assert.Equal(t, plain, mapFinalError(plain))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "success", statusLabel(nil))
	assert.Equal(t, "rate_limited", statusLabel(&RateLimitedError{}))
	assert.Equal(t, "timeout", statusLabel(fmt.Errorf("wrapped: %w", ErrTimeout)))
	assert.Equal(t, "empty", statusLabel(ErrEmptyResponse))
	assert.Equal(t, "error", statusLabel(errors.New("boom")))
}

func TestRateLimitedErrorMessage(t *testing.T) {
	assert.Equal(t, "rate limited by provider", (&RateLimitedError{}).Error())
	assert.Equal(t, "rate limited by provider, retry after 7s",
		(&RateLimitedError{RetryAfter: 7 * time.Second}).Error())
}
