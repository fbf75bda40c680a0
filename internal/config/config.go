package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Database (bar store)
	Database DatabaseConfig

	// Redis (series cache, rate-limit store)
	Redis RedisConfig

	// Market data
	MarketData MarketDataConfig

	// Services
	API       APIConfig
	Collector CollectorConfig
}

// DatabaseConfig holds bar store configuration
type DatabaseConfig struct {
	// Backend is "postgres", "sqlite" or "none".
	Backend         string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SQLitePath      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	CacheTTL     time.Duration
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	Provider  string // "yahoo" or "csv"
	BaseURL   string
	ProxyURL  string
	Timeout   time.Duration
	CSVDir    string
	RangeFrom string // YYYY-MM-DD, inclusive
	RangeTo   string // YYYY-MM-DD, exclusive
}

// APIConfig holds API service configuration
type APIConfig struct {
	Port         int
	RateLimitRPS int
	// RateLimitStore is "memory" or "redis".
	RateLimitStore string
	ThemePath      string
}

// CollectorConfig holds collector service configuration
type CollectorConfig struct {
	Tickers  []string
	CronSpec string
	RunOnce  bool
	Timeout  time.Duration
}

// Load reads configuration from environment variables (and .env if
// present).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Backend:         getEnv("DB_BACKEND", "none"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "ichimoku"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "ichimoku"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "ichimoku.db"),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			CacheTTL:     getEnvAsDuration("REDIS_CACHE_TTL", 7*24*time.Hour),
		},
		MarketData: MarketDataConfig{
			Provider:  getEnv("MARKET_DATA_PROVIDER", "yahoo"),
			BaseURL:   getEnv("MARKET_DATA_BASE_URL", ""),
			ProxyURL:  getEnv("MARKET_DATA_PROXY_URL", ""),
			Timeout:   getEnvAsDuration("MARKET_DATA_TIMEOUT", 30*time.Second),
			CSVDir:    getEnv("MARKET_DATA_CSV_DIR", "data"),
			RangeFrom: getEnv("MARKET_DATA_RANGE_FROM", "2024-01-01"),
			RangeTo:   getEnv("MARKET_DATA_RANGE_TO", "2024-12-31"),
		},
		API: APIConfig{
			Port:           getEnvAsInt("API_PORT", 8000),
			RateLimitRPS:   getEnvAsInt("API_RATE_LIMIT_RPS", 100),
			RateLimitStore: getEnv("API_RATE_LIMIT_STORE", "memory"),
			ThemePath:      getEnv("API_THEME_PATH", ""),
		},
		Collector: CollectorConfig{
			Tickers:  getEnvAsStringSlice("COLLECTOR_TICKERS", []string{"AAPL"}),
			CronSpec: getEnv("COLLECTOR_CRON", "0 30 22 * * 1-5"),
			RunOnce:  getEnvAsBool("COLLECTOR_RUN_ONCE", false),
			Timeout:  getEnvAsDuration("COLLECTOR_TIMEOUT", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "postgres", "sqlite", "none":
	default:
		return fmt.Errorf("DB_BACKEND must be postgres, sqlite or none, got %q", c.Database.Backend)
	}
	switch c.API.RateLimitStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("API_RATE_LIMIT_STORE must be memory or redis, got %q", c.API.RateLimitStore)
	}
	if c.API.RateLimitStore == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("API_RATE_LIMIT_STORE=redis requires REDIS_ENABLED=true")
	}
	if _, err := time.Parse("2006-01-02", c.MarketData.RangeFrom); err != nil {
		return fmt.Errorf("MARKET_DATA_RANGE_FROM: %w", err)
	}
	if _, err := time.Parse("2006-01-02", c.MarketData.RangeTo); err != nil {
		return fmt.Errorf("MARKET_DATA_RANGE_TO: %w", err)
	}
	return nil
}

// Range returns the configured fetch window.
func (c *MarketDataConfig) Range() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", c.RangeFrom)
	end, _ = time.Parse("2006-01-02", c.RangeTo)
	return start, end
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
