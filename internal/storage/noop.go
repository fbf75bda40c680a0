package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// NoopStore discards writes and returns no bars. Used when no store
// backend is configured.
type NoopStore struct{}

// NewNoopStore creates a NoopStore.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) SaveBars(ctx context.Context, ticker string, bars []models.Bar) error { return nil }

func (NoopStore) LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (NoopStore) ListTickers(ctx context.Context) ([]string, error) { return nil, nil }

func (NoopStore) Close() error { return nil }
