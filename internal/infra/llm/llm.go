// Package llm provides a single chat-completion interface over the
// OpenAI and Anthropic APIs. Callers hand over a system instruction and
// a user message and get back the model's text; provider selection,
// retries, circuit breaking, and timeouts all live here so the rest of
// the pipeline never touches an SDK directly.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"glbaguni/internal/pkg/config"
)

const (
	// ProviderOpenAI selects the OpenAI chat backend.
	ProviderOpenAI = "openai"

	// ProviderAnthropic selects the Anthropic messages backend.
	ProviderAnthropic = "anthropic"

	// MaxUserChars is the rune cap applied to the user message before it
	// is sent. Longer inputs are cut and marked with truncationMarker.
	MaxUserChars = 8000

	truncationMarker = "..."

	defaultOpenAIModel    = "gpt-3.5-turbo"
	defaultAnthropicModel = "claude-3-5-haiku-20241022"

	defaultMaxTokens   = 400
	defaultTemperature = 0.3
	defaultTimeout     = 30 * time.Second
)

// Options tunes a single Chat call. Zero values fall back to the
// client's configured defaults.
type Options struct {
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Reply is the model's answer to one Chat call.
type Reply struct {
	// Text is the completion with surrounding whitespace trimmed.
	Text string

	// TokensUsed is the total token count the provider reported for the
	// call, zero when the provider omits usage data.
	TokensUsed int

	// Latency is the duration of the successful API round trip.
	Latency time.Duration
}

// ChatClient is one chat-completion exchange with an LLM provider.
// The user message never migrates into the system role; prompt
// instructions and untrusted article text stay in separate messages.
type ChatClient interface {
	Chat(ctx context.Context, systemMsg, userMsg string, opts Options) (*Reply, error)
	Provider() string
}

// Config holds provider selection and per-call defaults.
type Config struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

var (
	configMetricsOnce sync.Once
	configMetrics     *config.ConfigMetrics
)

func loadConfigMetrics() *config.ConfigMetrics {
	configMetricsOnce.Do(func() {
		configMetrics = config.NewConfigMetrics("llm")
	})
	return configMetrics
}

// LoadConfig reads LLM settings from the environment. Invalid values
// log a warning and fall back to defaults; summarization should keep
// working on a misconfigured tuning knob.
func LoadConfig() Config {
	m := loadConfigMetrics()
	m.RecordLoadTimestamp()

	cfg := Config{}

	provider := config.LoadEnvWithFallback("LLM_PROVIDER", ProviderOpenAI, func(s string) error {
		if s != ProviderOpenAI && s != ProviderAnthropic {
			return fmt.Errorf("must be %q or %q", ProviderOpenAI, ProviderAnthropic)
		}
		return nil
	})
	logConfigResult(m, "LLM_PROVIDER", provider)
	cfg.Provider = provider.Value.(string)

	cfg.Model = config.LoadEnvString("LLM_MODEL", defaultModelFor(cfg.Provider))

	maxTokens := config.LoadEnvInt("LLM_MAX_TOKENS", defaultMaxTokens, func(v int) error {
		return config.ValidateIntRange(v, 1, 4096)
	})
	logConfigResult(m, "LLM_MAX_TOKENS", maxTokens)
	cfg.MaxTokens = maxTokens.Value.(int)

	cfg.Temperature = loadEnvTemperature(m)

	timeout := config.LoadEnvDuration("LLM_TIMEOUT", defaultTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 2*time.Minute)
	})
	logConfigResult(m, "LLM_TIMEOUT", timeout)
	cfg.Timeout = timeout.Value.(time.Duration)

	return cfg
}

// loadEnvTemperature parses LLM_TEMPERATURE by hand; the config helpers
// have no float loader and this is the only float knob in the service.
func loadEnvTemperature(m *config.ConfigMetrics) float32 {
	raw := os.Getenv("LLM_TEMPERATURE")
	if raw == "" {
		return defaultTemperature
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || v < 0 || v > 2 {
		slog.Warn("invalid config value, using default",
			"key", "LLM_TEMPERATURE",
			"value", raw,
			"default", defaultTemperature)
		m.RecordValidationError("LLM_TEMPERATURE")
		m.RecordFallback("LLM_TEMPERATURE")
		return defaultTemperature
	}
	return float32(v)
}

func logConfigResult(m *config.ConfigMetrics, key string, result config.ConfigLoadResult) {
	for _, w := range result.Warnings {
		slog.Warn("config load warning", "key", key, "warning", w)
		m.RecordValidationError(key)
	}
	if result.FallbackApplied {
		m.RecordFallback(key)
	}
}

func defaultModelFor(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultOpenAIModel
}

// ValidateCredentials checks that the API key for the given provider is
// present and plausible. Called at startup; a missing or malformed key
// should abort the process, not fail the first summarization an hour
// later.
func ValidateCredentials(provider string) error {
	switch provider {
	case ProviderOpenAI:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
		if !strings.HasPrefix(key, "sk-") || len(key) < 20 {
			return fmt.Errorf("OPENAI_API_KEY does not look like an OpenAI key")
		}
	case ProviderAnthropic:
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown LLM provider %q", provider)
	}
	return nil
}

// NewFromEnv loads the config, validates credentials, and constructs
// the configured provider client.
func NewFromEnv() (ChatClient, error) {
	cfg := LoadConfig()
	if err := ValidateCredentials(cfg.Provider); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropic(os.Getenv("ANTHROPIC_API_KEY"), cfg), nil
	default:
		return NewOpenAI(os.Getenv("OPENAI_API_KEY"), cfg), nil
	}
}

// withDefaults fills zero Options fields from the client config.
func (o Options) withDefaults(cfg Config) Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = cfg.MaxTokens
	}
	if o.Temperature <= 0 {
		o.Temperature = cfg.Temperature
	}
	if o.Timeout <= 0 {
		o.Timeout = cfg.Timeout
	}
	return o
}

// truncateUserMessage caps the user message at MaxUserChars runes.
func truncateUserMessage(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxUserChars {
		return s
	}
	slog.Warn("user message truncated", "original_chars", len(runes), "max_chars", MaxUserChars)
	return string(runes[:MaxUserChars]) + truncationMarker
}
