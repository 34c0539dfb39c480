// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the match service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// GeminiAPIKey may be empty; embedding refresh is then skipped with a
	// warning rather than failing startup.
	GeminiAPIKey string

	// EmbedRefreshHours is how often the cron job re-embeds stale
	// profiles and job postings.
	EmbedRefreshHours int

	// FeedPageSize is the page size every list feed loads per scroll
	// trigger (the initial load requests twice this).
	FeedPageSize int

	// FeedSessionTTLMinutes is how long an idle feed session survives
	// before the sweeper drops it.
	FeedSessionTTLMinutes int

	// JSONLogs switches the logger to JSON encoding.
	JSONLogs bool
	Debug    bool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCHA_PORT")
	if port == "" {
		port = "8080"
	}

	refresh := 6
	if s := os.Getenv("EMBED_REFRESH_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("EMBED_REFRESH_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		refresh = v
	}

	pageSize := 6
	if s := os.Getenv("FEED_PAGE_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("FEED_PAGE_SIZE must be a positive integer, got %q", s)
		}
		pageSize = v
	}

	sessionTTL := 30
	if s := os.Getenv("FEED_SESSION_TTL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("FEED_SESSION_TTL_MINUTES must be a positive integer, got %q", s)
		}
		sessionTTL = v
	}

	return &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		EmbedRefreshHours:     refresh,
		FeedPageSize:          pageSize,
		FeedSessionTTLMinutes: sessionTTL,
		JSONLogs:              os.Getenv("LOG_JSON") == "true",
		Debug:                 os.Getenv("LOG_DEBUG") == "true",
	}, nil
}
