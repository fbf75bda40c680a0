package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/collector"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/config"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/data"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/storage"
	"github.com/mohamedkhairy/ichimoku-cloud/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting collector service",
		logger.String("tickers", strings.Join(cfg.Collector.Tickers, ",")),
		logger.String("cron", cfg.Collector.CronSpec),
		logger.Bool("run_once", cfg.Collector.RunOnce),
	)

	// Initialize Redis client (series cache)
	var redisClient *redis.Client
	var cache storage.SeriesCache
	if cfg.Redis.Enabled {
		redisClient, err = storage.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis client",
				logger.ErrorField(err),
			)
		}
		defer redisClient.Close()
		cache = storage.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
	}

	// Initialize bar store
	store, err := newBarStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize bar store",
			logger.ErrorField(err),
		)
	}
	defer store.Close()

	// Initialize market data provider
	factory := data.NewProviderFactory()
	provider, err := factory.CreateProvider(cfg.MarketData.Provider, data.ProviderConfig{
		BaseURL:  cfg.MarketData.BaseURL,
		ProxyURL: cfg.MarketData.ProxyURL,
		Timeout:  cfg.MarketData.Timeout,
		CSVDir:   cfg.MarketData.CSVDir,
	})
	if err != nil {
		logger.Fatal("Failed to initialize market data provider",
			logger.ErrorField(err),
		)
	}

	rangeStart, rangeEnd := cfg.MarketData.Range()
	coll := collector.New(
		provider,
		store,
		cache,
		cfg.Collector.Tickers,
		rangeStart,
		rangeEnd,
		cfg.Collector.Timeout,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot mode: collect once and exit
	if cfg.Collector.RunOnce {
		if err := coll.RunOnce(ctx); err != nil {
			logger.Fatal("Collection run failed",
				logger.ErrorField(err),
			)
		}
		logger.Info("Collection run complete")
		return
	}

	// Scheduled mode
	if err := coll.Start(ctx, cfg.Collector.CronSpec); err != nil {
		logger.Fatal("Failed to start collector schedule",
			logger.ErrorField(err),
		)
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down collector service")

	cancel()
	coll.Stop()

	logger.Info("Collector service stopped")
}

func newBarStore(cfg *config.Config) (storage.BarStore, error) {
	switch cfg.Database.Backend {
	case "postgres":
		return storage.NewPostgresStore(cfg.Database)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Database.SQLitePath)
	default:
		return storage.NewNoopStore(), nil
	}
}
