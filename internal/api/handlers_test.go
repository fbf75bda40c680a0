package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/chart"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/data"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/ichimoku"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/storage"
)

func makeBars(t *testing.T, n int) []models.Bar {
	t.Helper()
	start, err := time.Parse(models.TimeLayout, "2024-01-02")
	require.NoError(t, err)

	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		base := 100 + 10*math.Sin(float64(i)/7)
		bars[i] = models.Bar{
			Time:   start.AddDate(0, 0, i).Format(models.TimeLayout),
			Open:   base,
			High:   base + 2,
			Low:    base - 2,
			Close:  base + 1,
			Volume: 1000 + float64(i),
		}
	}
	return bars
}

type testEnv struct {
	handler *Handler
	cache   *storage.MemoryCache
	store   *storage.MemoryStore
	router  *mux.Router
}

func newTestEnv(t *testing.T, provider data.Provider) *testEnv {
	t.Helper()
	cache := storage.NewMemoryCache()
	store := storage.NewMemoryStore()
	start, _ := time.Parse(models.TimeLayout, "2024-01-01")
	end, _ := time.Parse(models.TimeLayout, "2025-01-01")

	handler := NewHandler(provider, cache, store, ichimoku.NewEngine(), chart.NewBuilder(chart.DefaultTheme()), start, end)

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/data/{ticker}", handler.GetData).Methods("GET")
	v1.HandleFunc("/ichimoku", handler.ComputeIchimoku).Methods("POST")
	v1.HandleFunc("/chart/{ticker}", handler.GetChart).Methods("GET")

	return &testEnv{handler: handler, cache: cache, store: store, router: router}
}

func (e *testEnv) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestGetDataLiveSource(t *testing.T) {
	bars := makeBars(t, 60)
	env := newTestEnv(t, data.NewStaticProvider(map[string][]models.Bar{"AAPL": bars}))

	rec := env.do(http.MethodGet, "/api/v1/data/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "success", payload["status"])
	assert.Equal(t, "AAPL", payload["ticker"])
	assert.Equal(t, "static", payload["source"])
	assert.Equal(t, float64(60), payload["count"])

	// Live fetch populates the cache
	cached, ok, err := env.cache.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cached, 60)
}

func TestGetDataCacheHit(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))
	bars := makeBars(t, 10)
	require.NoError(t, env.cache.Put(context.Background(), "MSFT", bars))

	rec := env.do(http.MethodGet, "/api/v1/data/MSFT", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "cache", payload["source"])
	assert.Equal(t, float64(10), payload["count"])
}

func TestGetDataStoreFallback(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))
	bars := makeBars(t, 15)
	require.NoError(t, env.store.SaveBars(context.Background(), "TSLA", bars))

	rec := env.do(http.MethodGet, "/api/v1/data/TSLA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store", decodeBody(t, rec)["source"])
}

func TestGetDataSourceRestriction(t *testing.T) {
	bars := makeBars(t, 10)
	env := newTestEnv(t, data.NewStaticProvider(map[string][]models.Bar{"AAPL": bars}))
	require.NoError(t, env.store.SaveBars(context.Background(), "AAPL", bars))

	// Cache is empty so source=cache must miss even though the store
	// and provider could serve the ticker.
	rec := env.do(http.MethodGet, "/api/v1/data/AAPL?source=cache", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/data/AAPL?source=store", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store", decodeBody(t, rec)["source"])

	rec = env.do(http.MethodGet, "/api/v1/data/AAPL?source=live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "static", decodeBody(t, rec)["source"])
}

func TestGetDataLowercaseTickerNormalized(t *testing.T) {
	bars := makeBars(t, 5)
	env := newTestEnv(t, data.NewStaticProvider(map[string][]models.Bar{"AAPL": bars}))

	rec := env.do(http.MethodGet, "/api/v1/data/aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", decodeBody(t, rec)["ticker"])
}

func TestGetDataInvalidTicker(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))

	rec := env.do(http.MethodGet, "/api/v1/data/WAYTOOLONGTICKER", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDataNotFound(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))

	rec := env.do(http.MethodGet, "/api/v1/data/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	return nil, fmt.Errorf("%w: connection refused", data.ErrUpstream)
}

func TestGetDataUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, failingProvider{})

	rec := env.do(http.MethodGet, "/api/v1/data/AAPL", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestComputeIchimokuDefaults(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))
	body, err := json.Marshal(map[string]interface{}{"data": makeBars(t, 60)})
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/v1/ichimoku", body)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, float64(60+models.DefaultCloudShift), payload["count"])

	params := payload["parameters"].(map[string]interface{})
	assert.Equal(t, float64(models.DefaultConversionLen), params["conversion_len"])
	assert.Equal(t, float64(models.DefaultBaseLen), params["base_len"])
}

func TestComputeIchimokuOverrides(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))
	body, err := json.Marshal(map[string]interface{}{
		"data":        makeBars(t, 30),
		"cloud_shift": 0,
	})
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/v1/ichimoku", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), decodeBody(t, rec)["count"])
}

func TestComputeIchimokuBadRequests(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))

	rec := env.do(http.MethodPost, "/api/v1/ichimoku", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty series
	body, _ := json.Marshal(map[string]interface{}{"data": []models.Bar{}})
	rec = env.do(http.MethodPost, "/api/v1/ichimoku", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid window
	body, _ = json.Marshal(map[string]interface{}{
		"data":           makeBars(t, 10),
		"conversion_len": -1,
	})
	rec = env.do(http.MethodPost, "/api/v1/ichimoku", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChart(t *testing.T) {
	bars := makeBars(t, 120)
	env := newTestEnv(t, data.NewStaticProvider(map[string][]models.Bar{"AAPL": bars}))

	rec := env.do(http.MethodGet, "/api/v1/chart/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "success", payload["status"])

	chartPayload := payload["chart"].(map[string]interface{})
	assert.Equal(t, "AAPL", chartPayload["ticker"])
	panes := chartPayload["panes"].([]interface{})
	require.Len(t, panes, 2)
}

func TestGetChartParamOverride(t *testing.T) {
	bars := makeBars(t, 60)
	env := newTestEnv(t, data.NewStaticProvider(map[string][]models.Bar{"AAPL": bars}))

	rec := env.do(http.MethodGet, "/api/v1/chart/AAPL?cloud_shift=5&conversion_len=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	params := decodeBody(t, rec)["parameters"].(map[string]interface{})
	assert.Equal(t, float64(5), params["cloud_shift"])
	assert.Equal(t, float64(3), params["conversion_len"])

	rec = env.do(http.MethodGet, "/api/v1/chart/AAPL?cloud_shift=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChartNoData(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))

	rec := env.do(http.MethodGet, "/api/v1/chart/AAPL", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, data.NewStaticProvider(nil))
	env.router.HandleFunc("/health", env.handler.Health)

	rec := env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "healthy", payload["status"])

	services := payload["services"].(map[string]interface{})
	assert.Equal(t, "static", services["provider"])
	assert.Equal(t, "ok", services["cache"])
	assert.Equal(t, "ok", services["store"])
}
