package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/config"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/mohamedkhairy/ichimoku-cloud/pkg/logger"
)

var (
	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "series_cache_requests_total",
			Help: "Total number of series cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)

// DefaultCacheTTL bounds how long a same-day snapshot stays useful.
const DefaultCacheTTL = 7 * 24 * time.Hour

// RedisCache implements SeriesCache on Redis with a per-day key, so a
// ticker is fetched from the upstream source at most once per calendar
// day.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)
	return rdb, nil
}

// NewRedisCache creates a series cache. A zero ttl means DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, now: time.Now}
}

// cacheEnvelope is the stored payload; the metadata mirrors what the API
// reports about a cache hit.
type cacheEnvelope struct {
	CachedAt string       `json:"cached_at"`
	Ticker   string       `json:"ticker"`
	Count    int          `json:"count"`
	Bars     []models.Bar `json:"bars"`
}

func (c *RedisCache) key(ticker string) string {
	return fmt.Sprintf("cache:%s:%s", ticker, c.now().UTC().Format(models.TimeLayout))
}

// Get returns today's cached series for the ticker.
func (c *RedisCache) Get(ctx context.Context, ticker string) ([]models.Bar, bool, error) {
	raw, err := c.client.Get(ctx, c.key(ticker)).Bytes()
	if err == redis.Nil {
		cacheRequests.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// A corrupt entry behaves like a miss; the caller refetches and
		// overwrites it.
		cacheRequests.WithLabelValues("error").Inc()
		logger.Warn("Discarding corrupt cache entry",
			logger.String("ticker", ticker),
			logger.ErrorField(err),
		)
		return nil, false, nil
	}
	cacheRequests.WithLabelValues("hit").Inc()
	return envelope.Bars, true, nil
}

// Put caches the series under today's key with the cache TTL.
func (c *RedisCache) Put(ctx context.Context, ticker string, bars []models.Bar) error {
	payload, err := json.Marshal(cacheEnvelope{
		CachedAt: c.now().UTC().Format(time.RFC3339),
		Ticker:   ticker,
		Count:    len(bars),
		Bars:     bars,
	})
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(ticker), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
