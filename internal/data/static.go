package data

import (
	"context"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// StaticProvider serves canned bars from memory. Used in tests and as a
// deterministic fixture source.
type StaticProvider struct {
	bars map[string][]models.Bar
}

// NewStaticProvider creates a provider serving the given series.
func NewStaticProvider(bars map[string][]models.Bar) *StaticProvider {
	return &StaticProvider{bars: bars}
}

// Name returns the provider name.
func (p *StaticProvider) Name() string { return "static" }

// Fetch returns the canned series filtered to [start, end).
func (p *StaticProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	series, ok := p.bars[ticker]
	if !ok {
		return nil, ErrNoData
	}
	from := start.Format(models.TimeLayout)
	to := end.Format(models.TimeLayout)
	out := make([]models.Bar, 0, len(series))
	for _, b := range series {
		if b.Time >= from && b.Time < to {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
