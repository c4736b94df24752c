// Package pagination provides offset-based pagination helpers shared by
// the listing endpoints.
package pagination

import "glbaguni/pkg/config"

// Config holds pagination configuration settings.
type Config struct {
	DefaultPage    int // Default page number (typically 1)
	DefaultPerPage int // Default items per page (typically 20)
	MaxPerPage     int // Maximum allowed items per page (typically 100)
}

// DefaultConfig returns the default pagination configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPage:    1,
		DefaultPerPage: 20,
		MaxPerPage:     100,
	}
}

// LoadFromEnv loads pagination config from environment variables,
// falling back to the defaults for anything unset.
//
// Supported environment variables:
//   - PAGINATION_DEFAULT_PAGE
//   - PAGINATION_DEFAULT_PER_PAGE
//   - PAGINATION_MAX_PER_PAGE
func LoadFromEnv() Config {
	return Config{
		DefaultPage:    config.GetEnvInt("PAGINATION_DEFAULT_PAGE", 1),
		DefaultPerPage: config.GetEnvInt("PAGINATION_DEFAULT_PER_PAGE", 20),
		MaxPerPage:     config.GetEnvInt("PAGINATION_MAX_PER_PAGE", 100),
	}
}
