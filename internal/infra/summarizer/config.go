package summarizer

import (
	"log/slog"

	"glbaguni/internal/pkg/config"
)

const (
	defaultCharLimit = 600
	minCharLimit     = 100
	maxCharLimit     = 5000
)

// Config holds summarizer tuning knobs.
type Config struct {
	// CharacterLimit is the rune count a summary should stay under.
	// Summaries over the limit are kept but counted against compliance.
	CharacterLimit int
}

// LoadConfig reads SUMMARIZER_CHAR_LIMIT from the environment. Invalid
// values warn and fall back; a bad knob must not stop summarization.
func LoadConfig() Config {
	limit := config.LoadEnvInt("SUMMARIZER_CHAR_LIMIT", defaultCharLimit, func(v int) error {
		return config.ValidateIntRange(v, minCharLimit, maxCharLimit)
	})
	for _, w := range limit.Warnings {
		slog.Warn("config load warning", "key", "SUMMARIZER_CHAR_LIMIT", "warning", w)
	}

	return Config{
		CharacterLimit: limit.Value.(int),
	}
}
