package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFactory(t *testing.T) {
	factory := NewProviderFactory()
	assert.ElementsMatch(t, []string{"yahoo", "csv"}, factory.ListProviders())

	p, err := factory.CreateProvider("yahoo", ProviderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "yahoo", p.Name())

	_, err = factory.CreateProvider("bloomberg", ProviderConfig{})
	assert.Error(t, err)

	err = factory.RegisterProvider("static", func(ProviderConfig) (Provider, error) {
		return NewStaticProvider(nil), nil
	})
	require.NoError(t, err)
	assert.Error(t, factory.RegisterProvider("static", nil))
}

const yahooFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400],
      "indicators": {
        "quote": [{
          "open":   [185.78, 182.88, null],
          "high":   [187.07, 184.52, null],
          "low":    [182.55, 182.09, null],
          "close":  [184.29, 182.91, null],
          "volume": [82488700, 58414500, null]
        }]
      }
    }],
    "error": null
  }
}`

func TestYahooProvider_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(yahooFixture))
	}))
	defer server.Close()

	p := NewYahooProvider(ProviderConfig{BaseURL: server.URL})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	bars, err := p.Fetch(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	// The null session is skipped, not fabricated.
	require.Len(t, bars, 2)
	assert.Equal(t, "2024-01-02", bars[0].Time)
	assert.Equal(t, 184.29, bars[0].Close)
	assert.Equal(t, 82488700.0, bars[0].Volume)
	assert.Equal(t, "2024-01-03", bars[1].Time)
}

func TestYahooProvider_FetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/MISSING":
			w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
		case "/v8/finance/chart/BROKEN":
			w.Write([]byte(`{"chart":`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	p := NewYahooProvider(ProviderConfig{BaseURL: server.URL})
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()

	_, err := p.Fetch(context.Background(), "MISSING", start, end)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = p.Fetch(context.Background(), "BROKEN", start, end)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = p.Fetch(context.Background(), "BOOM", start, end)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCSVProvider_Fetch(t *testing.T) {
	dir := t.TempDir()
	content := "time,open,high,low,close,volume\n" +
		"2024-01-02,185.78,187.07,182.55,184.29,82488700\n" +
		"2024-01-03,182.88,184.52,182.09,182.91,58414500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(content), 0o644))

	p := NewCSVProvider(dir)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	// Lower-case ticker maps to the same file; range excludes the
	// second bar.
	bars, err := p.Fetch(context.Background(), "aapl", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 184.29, bars[0].Close)

	_, err = p.Fetch(context.Background(), "MSFT", start, end)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCSVProvider_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAD.csv"),
		[]byte("time,open,high,low,close\n2024-01-02,1,2,0.5,1.5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UGLY.csv"),
		[]byte("time,open,high,low,close,volume\n2024-01-02,x,2,0.5,1.5,10\n"), 0o644))

	p := NewCSVProvider(dir)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.Fetch(context.Background(), "BAD", start, end)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = p.Fetch(context.Background(), "UGLY", start, end)
	assert.ErrorIs(t, err, models.ErrMalformedBar)
}

func TestStaticProvider_Fetch(t *testing.T) {
	p := NewStaticProvider(map[string][]models.Bar{
		"AAPL": {{Time: "2024-01-02", Close: 184.29}},
	})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	bars, err := p.Fetch(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Len(t, bars, 1)

	_, err = p.Fetch(context.Background(), "TSLA", start, end)
	assert.ErrorIs(t, err, ErrNoData)
}
