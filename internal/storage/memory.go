package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// MemoryStore is an in-memory BarStore for tests and throwaway runs.
type MemoryStore struct {
	mu   sync.RWMutex
	bars map[string]map[string]models.Bar // ticker -> time -> bar
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bars: make(map[string]map[string]models.Bar)}
}

// SaveBars upserts the bars.
func (s *MemoryStore) SaveBars(ctx context.Context, ticker string, bars []models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTime, ok := s.bars[ticker]
	if !ok {
		byTime = make(map[string]models.Bar, len(bars))
		s.bars[ticker] = byTime
	}
	for _, b := range bars {
		byTime[b.Time] = b
	}
	return nil
}

// LoadBars returns the ticker's bars inside [start, end).
func (s *MemoryStore) LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := start.Format(models.TimeLayout)
	to := end.Format(models.TimeLayout)

	var bars []models.Bar
	for t, b := range s.bars[ticker] {
		if t >= from && t < to {
			bars = append(bars, b)
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars, nil
}

// ListTickers returns the tickers with stored bars.
func (s *MemoryStore) ListTickers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tickers := make([]string, 0, len(s.bars))
	for t := range s.bars {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// MemoryCache is an in-memory SeriesCache for tests.
type MemoryCache struct {
	mu     sync.RWMutex
	series map[string][]models.Bar
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{series: make(map[string][]models.Bar)}
}

// Get returns the cached series for the ticker.
func (c *MemoryCache) Get(ctx context.Context, ticker string) ([]models.Bar, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bars, ok := c.series[ticker]
	return bars, ok, nil
}

// Put caches the series.
func (c *MemoryCache) Put(ctx context.Context, ticker string, bars []models.Bar) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[ticker] = bars
	return nil
}

// Close is a no-op.
func (c *MemoryCache) Close() error { return nil }
