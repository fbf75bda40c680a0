package storage

import (
	"context"
	"testing"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bars := []models.Bar{
		{Time: "2024-01-03", Close: 182.91},
		{Time: "2024-01-02", Close: 184.29},
	}
	require.NoError(t, store.SaveBars(ctx, "AAPL", bars))

	// Upsert overwrites the same key.
	require.NoError(t, store.SaveBars(ctx, "AAPL", []models.Bar{{Time: "2024-01-02", Close: 185.0}}))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	loaded, err := store.LoadBars(ctx, "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Sorted ascending regardless of insertion order.
	assert.Equal(t, "2024-01-02", loaded[0].Time)
	assert.Equal(t, 185.0, loaded[0].Close)

	tickers, err := store.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)
}

func TestMemoryStore_RangeFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveBars(ctx, "AAPL", []models.Bar{
		{Time: "2024-01-02"}, {Time: "2024-01-03"}, {Time: "2024-01-04"},
	}))

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	loaded, err := store.LoadBars(ctx, "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "2024-01-03", loaded[0].Time)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	_, ok, err := cache.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	bars := []models.Bar{{Time: "2024-01-02", Close: 184.29}}
	require.NoError(t, cache.Put(ctx, "AAPL", bars))

	got, ok, err := cache.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bars, got)
}
