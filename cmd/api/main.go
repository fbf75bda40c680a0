package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/api"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/chart"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/config"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/data"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/ichimoku"
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

	logger.Info("Starting REST API service",
		logger.Int("port", cfg.API.Port),
		logger.Int("rate_limit_rps", cfg.API.RateLimitRPS),
		logger.String("provider", cfg.MarketData.Provider),
	)

	// Initialize Redis client (series cache, optional rate-limit store)
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

	// Initialize chart theme
	theme := chart.DefaultTheme()
	if cfg.API.ThemePath != "" {
		theme, err = chart.LoadTheme(cfg.API.ThemePath)
		if err != nil {
			logger.Fatal("Failed to load chart theme",
				logger.String("path", cfg.API.ThemePath),
				logger.ErrorField(err),
			)
		}
	}

	// Initialize handlers
	rangeStart, rangeEnd := cfg.MarketData.Range()
	handler := api.NewHandler(
		provider,
		cache,
		store,
		ichimoku.NewEngine(),
		chart.NewBuilder(theme),
		rangeStart,
		rangeEnd,
	)

	// Set up router
	router := mux.NewRouter()

	// API v1 routes
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/data/{ticker}", handler.GetData).Methods("GET")
	v1.HandleFunc("/ichimoku", handler.ComputeIchimoku).Methods("POST")
	v1.HandleFunc("/chart/{ticker}", handler.GetChart).Methods("GET")

	// Health check endpoints
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"service": "ichimoku-cloud",
			"status":  "ok",
		})
	}).Methods("GET")

	router.HandleFunc("/health", handler.Health)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		// Check bar store connectivity
		_, err := store.ListTickers(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	})

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Rate-limit store
	var limitStore api.RateLimitStore = api.NewMemoryRateLimitStore()
	if cfg.API.RateLimitStore == "redis" {
		limitStore = api.NewRedisRateLimitStore(redisClient)
	}

	// Apply middleware
	middlewares := api.ChainMiddleware(
		api.CORSMiddleware(),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(),
		api.RecoveryMiddleware(),
		api.RateLimitMiddleware(limitStore, cfg.API.RateLimitRPS),
	)

	// Start HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: middlewares(router),
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down REST API service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}

	logger.Info("REST API service stopped")
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
