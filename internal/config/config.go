package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string

	// Deck store backend: "mongo", "sqlite" or "memory"
	StoreBackend string
	SQLitePath   string

	// LLM provider (OpenAI-compatible chat completions API)
	LLMBaseURL    string
	LLMAPIKey     string
	PlannerModel  string
	WriterModel   string
	LLMTimeout    time.Duration
	LLMRateLimit  float64 // requests per second, 0 disables client-side limiting
	LLMRateBurst  int
	LLMMaxRetries int

	// Generation concurrency
	MaxDecks            int // concurrent deck generations
	MaxSlideConcurrency int // concurrent slide writes per deck

	// Asset directory for CSS fragments and persona definitions
	AssetsDir      string
	AssetHotReload bool

	// Chrome binary for PDF export, empty uses chromedp's default lookup
	ChromePath string

	// Retention cleanup for stale generating decks
	RetentionEnabled  bool
	RetentionSchedule string // cron expression
	StaleDeckAge      time.Duration

	// Deck list cache
	SummaryCacheTTL time.Duration

	// Rate limiting, per-scope limits come from the middleware package
	RateLimitEnabled bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017/deckflow"),

		StoreBackend: strings.ToLower(getEnv("DECKSTORE_BACKEND", "mongo")),
		SQLitePath:   getEnv("SQLITE_PATH", "data/deckflow.db"),

		LLMBaseURL:    getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:     getEnv("LLM_API_KEY", ""),
		PlannerModel:  getEnv("PLANNER_MODEL", "gpt-4o"),
		WriterModel:   getEnv("WRITER_MODEL", "gpt-4o-mini"),
		LLMTimeout:    getDurationEnv("LLM_TIMEOUT", 120*time.Second),
		LLMRateLimit:  getFloatEnv("LLM_RATE_LIMIT_RPS", 0),
		LLMRateBurst:  getIntEnv("LLM_RATE_LIMIT_BURST", 1),
		LLMMaxRetries: getIntEnv("LLM_MAX_RETRIES", 2),

		MaxDecks:            getIntEnv("MAX_DECKS", 3),
		MaxSlideConcurrency: getIntEnv("MAX_SLIDE_CONCURRENCY", 4),

		AssetsDir:      getEnv("ASSETS_DIR", "assets"),
		AssetHotReload: getBoolEnv("ASSET_HOT_RELOAD", true),

		ChromePath: getEnv("CHROME_PATH", ""),

		RetentionEnabled:  getBoolEnv("RETENTION_ENABLED", true),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "*/30 * * * *"),
		StaleDeckAge:      getDurationEnv("STALE_DECK_AGE", 2*time.Hour),

		SummaryCacheTTL: getDurationEnv("SUMMARY_CACHE_TTL", 15*time.Second),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
