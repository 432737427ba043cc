// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// TMDBAPIKey authenticates image and cross-reference lookups.
	TMDBAPIKey string

	// MatchDBPath is the SQLite file for persisted id matches. Empty
	// disables persistence; matches are then memoized in memory only.
	MatchDBPath string

	// LogFile enables rotating file logging when set. Empty logs to stderr.
	LogFile string

	// SearchRatePerSecond and SearchBurst throttle the search endpoints
	// per client IP.
	SearchRatePerSecond float64
	SearchBurst         int
}

// Load reads configuration from the environment. TMDB_API_KEY is required;
// everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getenv("PORT", "7000"),
		TMDBAPIKey:          os.Getenv("TMDB_API_KEY"),
		MatchDBPath:         os.Getenv("MATCH_DB_PATH"),
		LogFile:             os.Getenv("LOG_FILE"),
		SearchRatePerSecond: 5,
		SearchBurst:         10,
	}
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
