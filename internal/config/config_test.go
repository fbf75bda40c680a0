package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, "memory", cfg.API.RateLimitStore)
	assert.Equal(t, "none", cfg.Database.Backend)
	assert.Equal(t, "yahoo", cfg.MarketData.Provider)
	assert.Equal(t, []string{"AAPL"}, cfg.Collector.Tickers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_BACKEND", "sqlite")
	t.Setenv("API_PORT", "9000")
	t.Setenv("COLLECTOR_TICKERS", "AAPL, MSFT ,GOOG")
	t.Setenv("REDIS_CACHE_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Backend)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, cfg.Collector.Tickers)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "dynamo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RedisLimiterRequiresRedis(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_STORE", "redis")
	t.Setenv("REDIS_ENABLED", "false")
	_, err := Load()
	assert.Error(t, err)
}

func TestMarketDataConfig_Range(t *testing.T) {
	cfg := MarketDataConfig{RangeFrom: "2024-01-01", RangeTo: "2024-12-31"}
	start, end := cfg.Range()
	assert.Equal(t, 2024, start.Year())
	assert.Equal(t, time.December, end.Month())
}
