package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is constructed once at
// startup and passed into components; there is no ambient global state.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Polymarket API
	GammaURL       string
	ClobURL        string
	RequestTimeout time.Duration

	// Detection thresholds
	ProbSumThreshold float64
	SpreadThreshold  float64

	// Market filters
	MinVolume    float64
	MinLiquidity float64
	MaxMarkets   int

	// Scan loop
	ScanInterval time.Duration
	ErrorBackoff time.Duration
	DedupeWindow time.Duration

	// State bounds
	MaxFlaggedMarkets int

	// Notification
	TelegramBotToken string
	TelegramChatID   string
}

// LoadFromEnv loads configuration from environment variables with defaults.
// Malformed numeric values are a startup error, not a silent fallback: a bad
// threshold must fail fast rather than scan with the wrong sensitivity.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		GammaURL: getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		ClobURL:  getEnvOrDefault("POLYMARKET_CLOB_API_URL", "https://clob.polymarket.com"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	var err error

	cfg.ProbSumThreshold, err = getFloat64("PROB_SUM_THRESHOLD", 0.03)
	if err != nil {
		return nil, err
	}

	cfg.SpreadThreshold, err = getFloat64("SPREAD_THRESHOLD", 0.02)
	if err != nil {
		return nil, err
	}

	cfg.MinVolume, err = getFloat64("MIN_VOLUME", 10000)
	if err != nil {
		return nil, err
	}

	cfg.MinLiquidity, err = getFloat64("MIN_LIQUIDITY", 1000)
	if err != nil {
		return nil, err
	}

	cfg.MaxMarkets, err = getInt("MAX_MARKETS", 500)
	if err != nil {
		return nil, err
	}

	cfg.MaxFlaggedMarkets, err = getInt("MAX_FLAGGED_MARKETS", 256)
	if err != nil {
		return nil, err
	}

	cfg.ScanInterval, err = getSeconds("MARKET_SCAN_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.ErrorBackoff, err = getSeconds("ERROR_BACKOFF", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.DedupeWindow, err = getSeconds("DEDUPE_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.RequestTimeout, err = getSeconds("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.GammaURL == "" {
		return fmt.Errorf("POLYMARKET_GAMMA_API_URL cannot be empty")
	}

	if c.ClobURL == "" {
		return fmt.Errorf("POLYMARKET_CLOB_API_URL cannot be empty")
	}

	if c.ProbSumThreshold <= 0 || c.ProbSumThreshold >= 1.0 {
		return fmt.Errorf("PROB_SUM_THRESHOLD must be between 0 and 1.0, got %f", c.ProbSumThreshold)
	}

	if c.SpreadThreshold <= 0 || c.SpreadThreshold >= 1.0 {
		return fmt.Errorf("SPREAD_THRESHOLD must be between 0 and 1.0, got %f", c.SpreadThreshold)
	}

	if c.MinVolume < 0 {
		return fmt.Errorf("MIN_VOLUME cannot be negative, got %f", c.MinVolume)
	}

	if c.MaxMarkets <= 0 {
		return fmt.Errorf("MAX_MARKETS must be positive, got %d", c.MaxMarkets)
	}

	if c.MaxFlaggedMarkets <= 0 {
		return fmt.Errorf("MAX_FLAGGED_MARKETS must be positive, got %d", c.MaxFlaggedMarkets)
	}

	if c.ScanInterval <= 0 {
		return fmt.Errorf("MARKET_SCAN_INTERVAL must be positive, got %s", c.ScanInterval)
	}

	if c.DedupeWindow <= 0 {
		return fmt.Errorf("DEDUPE_WINDOW must be positive, got %s", c.DedupeWindow)
	}

	return nil
}

// TelegramConfigured reports whether both Telegram credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}

	return intVal, nil
}

func getFloat64(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid float %q: %w", key, value, err)
	}

	return floatVal, nil
}

// getSeconds parses a duration env var. Bare integers are treated as seconds
// (the original deployment convention); otherwise Go duration syntax applies.
func getSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}

	return duration, nil
}
