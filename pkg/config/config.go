package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: the Postgres price provider is only wired
	// when a URL is configured)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data collaborators
	MarketData MarketDataConfig

	// Engine defaults
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds the external data collaborators' settings.
type MarketDataConfig struct {
	StooqBaseURL string
	FxBaseURL    string
	RatesPageURL string
	FactorsURL   string

	// RequestsPerSecond caps outbound calls per provider.
	RequestsPerSecond float64

	// CacheTTL bounds staleness of cached price histories.
	CacheTTL time.Duration

	// FallbackRiskFreeRate is used when the rates collaborator is
	// unreachable (annualized, e.g. 0.045).
	FallbackRiskFreeRate float64
}

// EngineConfig holds analytic defaults.
type EngineConfig struct {
	MinObservations int
	Notional        float64
	BaseCurrency    string

	// Watchlist is warmed into the price cache on a schedule.
	Watchlist    []string
	WarmSchedule string // cron expression, with seconds
}

// Load reads configuration from environment variables. Only this
// function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			StooqBaseURL:         getEnv("STOOQ_BASE_URL", "https://stooq.com"),
			FxBaseURL:            getEnv("FX_BASE_URL", "https://api.frankfurter.app"),
			RatesPageURL:         getEnv("RATES_PAGE_URL", "https://www.cnbc.com/quotes/US10Y"),
			FactorsURL:           getEnv("FACTORS_URL", ""),
			RequestsPerSecond:    getEnvAsFloat("MARKETDATA_RPS", 5),
			CacheTTL:             getEnvAsDuration("MARKETDATA_CACHE_TTL", "6h"),
			FallbackRiskFreeRate: getEnvAsFloat("RISK_FREE_RATE_FALLBACK", 0.045),
		},

		Engine: EngineConfig{
			MinObservations: getEnvAsInt("ENGINE_MIN_OBSERVATIONS", 252),
			Notional:        getEnvAsFloat("ENGINE_NOTIONAL", 10_000),
			BaseCurrency:    getEnv("ENGINE_BASE_CURRENCY", "USD"),
			Watchlist:       getEnvAsSlice("ENGINE_WATCHLIST", nil),
			WarmSchedule:    getEnv("ENGINE_WARM_SCHEDULE", "0 0 6 * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Engine.MinObservations < 2 {
		return fmt.Errorf("ENGINE_MIN_OBSERVATIONS must be at least 2")
	}
	if c.Engine.Notional <= 0 {
		return fmt.Errorf("ENGINE_NOTIONAL must be positive")
	}
	if c.MarketData.RequestsPerSecond <= 0 {
		return fmt.Errorf("MARKETDATA_RPS must be positive")
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
