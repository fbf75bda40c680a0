// Package collector periodically fetches the configured ticker universe
// from the market data provider and lands it in the bar store and the
// series cache, so the API can serve tickers even when the live source is
// down.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/data"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/storage"
	"github.com/mohamedkhairy/ichimoku-cloud/pkg/logger"
)

var (
	collectorRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_ticker_runs_total",
			Help: "Total number of per-ticker collection attempts",
		},
		[]string{"status"}, // "success" or "error"
	)
)

// Collector fetches and persists daily bars for a ticker universe.
type Collector struct {
	provider data.Provider
	store    storage.BarStore
	cache    storage.SeriesCache
	tickers  []string
	start    time.Time
	end      time.Time
	timeout  time.Duration
	cron     *cron.Cron
}

// New creates a Collector. cache may be nil when no cache is configured.
func New(provider data.Provider, store storage.BarStore, cache storage.SeriesCache, tickers []string, start, end time.Time, timeout time.Duration) *Collector {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Collector{
		provider: provider,
		store:    store,
		cache:    cache,
		tickers:  tickers,
		start:    start,
		end:      end,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// RunOnce collects every configured ticker. A failing ticker does not
// stop the rest; the first error is returned after all tickers ran.
func (c *Collector) RunOnce(ctx context.Context) error {
	var firstErr error
	for _, ticker := range c.tickers {
		if err := c.collect(ctx, ticker); err != nil {
			collectorRuns.WithLabelValues("error").Inc()
			logger.Error("Collection failed",
				logger.String("ticker", ticker),
				logger.ErrorField(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		collectorRuns.WithLabelValues("success").Inc()
	}
	return firstErr
}

func (c *Collector) collect(ctx context.Context, ticker string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bars, err := c.provider.Fetch(ctx, ticker, c.start, c.end)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if err := c.store.SaveBars(ctx, ticker, bars); err != nil {
		return fmt.Errorf("store %s: %w", ticker, err)
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, ticker, bars); err != nil {
			// Cache is an optimization; a failed write is not fatal.
			logger.Warn("Cache write failed",
				logger.String("ticker", ticker),
				logger.ErrorField(err),
			)
		}
	}
	logger.Info("Collected bars",
		logger.String("ticker", ticker),
		logger.String("provider", c.provider.Name()),
		logger.Int("count", len(bars)),
	)
	return nil
}

// Start registers the collection job and starts the cron scheduler.
func (c *Collector) Start(ctx context.Context, cronSpec string) error {
	_, err := c.cron.AddFunc(cronSpec, func() {
		if err := c.RunOnce(ctx); err != nil {
			logger.Error("Scheduled collection finished with errors", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("register collection job: %w", err)
	}
	c.cron.Start()
	logger.Info("Collector scheduler started",
		logger.String("cron", cronSpec),
		logger.Int("tickers", len(c.tickers)),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (c *Collector) Stop() {
	<-c.cron.Stop().Done()
}
