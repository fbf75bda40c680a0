// Package storage provides the series cache and the bar store: the cache
// avoids refetching a ticker within the same day, the store is the
// durable backup source for tickers the live feed cannot serve.
package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// SeriesCache caches a ticker's fetched OHLCV series for the current day.
type SeriesCache interface {
	// Get returns the cached series and whether it was present.
	Get(ctx context.Context, ticker string) ([]models.Bar, bool, error)

	// Put caches the series under today's key.
	Put(ctx context.Context, ticker string, bars []models.Bar) error

	// Close releases the underlying client.
	Close() error
}

// BarStore persists daily bars per ticker.
type BarStore interface {
	// SaveBars upserts the ticker's bars.
	SaveBars(ctx context.Context, ticker string, bars []models.Bar) error

	// LoadBars returns the ticker's bars inside [start, end), sorted
	// ascending by time. An empty result is not an error.
	LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error)

	// ListTickers returns the tickers with stored bars.
	ListTickers(ctx context.Context) ([]string, error)

	// Close closes the store.
	Close() error
}
