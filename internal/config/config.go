package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram settings
	TelegramToken     string
	TelegramChannelID string

	// Gemini settings
	GeminiAPIKey     string
	MaxJudgmentCalls int // daily cap on AI judgment requests (0 = unlimited)

	// Feed settings
	FeedsConfigPath string
	FetchWorkers    int
	FetchTimeout    time.Duration
	MaxEntryAge     time.Duration

	// Selection settings
	ChecklistPath      string
	ScoreThreshold     float64
	CandidateLimit     int
	RelevanceThreshold int

	// Tracker settings
	TrackerFilePath string
	TrackerDSN      string // when set, the Postgres store is used instead of the file
	RetentionDays   int

	// App settings
	Debug          bool
	RunInterval    time.Duration // 0 = single cycle and exit
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		FeedsConfigPath:    "configs/feeds.yaml",
		ChecklistPath:      "configs/relevance_checklist.json",
		TrackerFilePath:    "news_tracker.json",
		FetchWorkers:       8,
		FetchTimeout:       15 * time.Second,
		MaxEntryAge:        48 * time.Hour,
		ScoreThreshold:     1.5,
		CandidateLimit:     5,
		RelevanceThreshold: 5,
		RetentionDays:      7,
		MaxJudgmentCalls:   50,
		RequestTimeout:     30 * time.Second,
		RetryAttempts:      3,
		RetryDelay:         2 * time.Second,
	}

	// Load from environment
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChannelID = os.Getenv("TELEGRAM_CHANNEL_ID")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.ChecklistPath = getEnvOrDefault("CHECKLIST_PATH", cfg.ChecklistPath)
	cfg.TrackerFilePath = getEnvOrDefault("TRACKER_FILE_PATH", cfg.TrackerFilePath)
	cfg.TrackerDSN = os.Getenv("TRACKER_DSN")

	cfg.FetchWorkers = getEnvIntOrDefault("FETCH_WORKERS", cfg.FetchWorkers)
	cfg.CandidateLimit = getEnvIntOrDefault("CANDIDATE_LIMIT", cfg.CandidateLimit)
	cfg.RetentionDays = getEnvIntOrDefault("RETENTION_DAYS", cfg.RetentionDays)
	cfg.MaxJudgmentCalls = getEnvIntOrDefault("MAX_JUDGMENT_CALLS", cfg.MaxJudgmentCalls)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("MAX_ENTRY_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxEntryAge = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("SCORE_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val >= 0 {
			cfg.ScoreThreshold = val
		}
	}
	if v := os.Getenv("RUN_INTERVAL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RunInterval = time.Duration(val) * time.Minute
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChannelID == "" {
		return fmt.Errorf("TELEGRAM_CHANNEL_ID is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.CandidateLimit <= 0 {
		return fmt.Errorf("CANDIDATE_LIMIT must be positive")
	}
	return nil
}
