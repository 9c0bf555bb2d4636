// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, startup aborts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the catalog service.
type Config struct {
	Port        string
	DatabaseURL string // empty selects the in-memory store and index
	RedisURL    string // empty selects the in-memory cache and limiter

	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string // e.g. "us", "gb", "fr"

	GeminiAPIKey   string // empty disables embeddings; matching degrades to keywords
	EmbedModel     string
	EmbedQueueSize int

	CacheTTL             time.Duration
	SearchTimeout        time.Duration
	RefreshIntervalHours int

	RateLimitPerMinute int
	RateLimitPerDay    int

	SavedSearches []string // keyword sets refreshed on the cron interval

	LogJSON  bool
	LogDebug bool
}

// Load reads .env (if present) and the environment, returning a validated
// Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          envOr("PORT", "8082"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		AdzunaAppID:   os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:  os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry: envOr("ADZUNA_COUNTRY", "us"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		EmbedModel:    envOr("EMBED_MODEL", "gemini-embedding-001"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		LogDebug:      os.Getenv("LOG_DEBUG") == "true",
	}

	for _, s := range strings.Split(os.Getenv("SAVED_SEARCHES"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.SavedSearches = append(cfg.SavedSearches, s)
		}
	}

	var err error
	if cfg.EmbedQueueSize, err = envInt("EMBED_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.RefreshIntervalHours, err = envInt("REFRESH_INTERVAL_HOURS", 6); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerDay, err = envInt("RATE_LIMIT_PER_DAY", 1000); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SearchTimeout, err = envDuration("SEARCH_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like \"5m\", got %q", key, s)
	}
	return v, nil
}
