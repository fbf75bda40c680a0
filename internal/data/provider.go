// Package data supplies OHLCV series from market-data sources: the Yahoo
// Finance chart API, local CSV backups, and an in-memory provider for
// tests.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

var (
	// ErrNoData is returned when the source has no bars for the ticker
	// and range.
	ErrNoData = errors.New("no data for ticker")
	// ErrUpstream is returned when the remote source fails or replies
	// with a malformed payload.
	ErrUpstream = errors.New("upstream data source error")
)

// Provider defines the interface for market data sources.
type Provider interface {
	// Fetch returns the ticker's daily bars inside [start, end), sorted
	// ascending by time.
	Fetch(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error)

	// Name returns the provider name (e.g. "yahoo", "csv")
	Name() string
}

// ProviderConfig holds configuration for a provider
type ProviderConfig struct {
	BaseURL  string
	ProxyURL string
	Timeout  time.Duration
	CSVDir   string
}

// ProviderFactory creates provider instances by registered type.
type ProviderFactory struct {
	factories map[string]func(ProviderConfig) (Provider, error)
}

// NewProviderFactory creates a factory with the built-in providers
// registered.
func NewProviderFactory() *ProviderFactory {
	f := &ProviderFactory{
		factories: make(map[string]func(ProviderConfig) (Provider, error)),
	}
	f.factories["yahoo"] = func(cfg ProviderConfig) (Provider, error) {
		return NewYahooProvider(cfg), nil
	}
	f.factories["csv"] = func(cfg ProviderConfig) (Provider, error) {
		return NewCSVProvider(cfg.CSVDir), nil
	}
	return f
}

// CreateProvider creates a provider of the given type.
func (f *ProviderFactory) CreateProvider(providerType string, cfg ProviderConfig) (Provider, error) {
	factory, exists := f.factories[providerType]
	if !exists {
		return nil, errors.New("unknown provider type: " + providerType)
	}
	return factory(cfg)
}

// RegisterProvider registers a custom provider constructor.
func (f *ProviderFactory) RegisterProvider(providerType string, factory func(ProviderConfig) (Provider, error)) error {
	if _, exists := f.factories[providerType]; exists {
		return errors.New("provider type already registered: " + providerType)
	}
	f.factories[providerType] = factory
	return nil
}

// ListProviders returns the registered provider types.
func (f *ProviderFactory) ListProviders() []string {
	types := make([]string, 0, len(f.factories))
	for t := range f.factories {
		types = append(types, t)
	}
	return types
}
