// Package logging builds the structured JSON loggers used across the
// service, on top of log/slog.
//
// The API server logs to stdout. CLI tools log to stderr so their stdout
// stays reserved for command output. Both honor the LOG_LEVEL environment
// variable (debug, info, warn, error).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL string to a slog.Level. Matching is
// case-insensitive and ignores surrounding whitespace; empty or unknown
// values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger writing to stdout at the level named by
// the LOG_LEVEL environment variable.
func NewLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	})
	return slog.New(handler)
}

// NewCLILogger returns a JSON logger writing to stderr at the level named
// by the LOG_LEVEL environment variable. Command-line tools use it so that
// stdout carries only their result.
func NewCLILogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	})
	return slog.New(handler)
}
