package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/chart"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/data"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/ichimoku"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
	"github.com/mohamedkhairy/ichimoku-cloud/internal/storage"
	"github.com/mohamedkhairy/ichimoku-cloud/pkg/logger"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.^-]{1,12}$`)

// Handler serves the data, ichimoku and chart endpoints.
type Handler struct {
	provider   data.Provider
	cache      storage.SeriesCache // nil when no cache is configured
	store      storage.BarStore
	engine     *ichimoku.Engine
	builder    *chart.Builder
	rangeStart time.Time
	rangeEnd   time.Time
}

// NewHandler creates a Handler. cache may be nil.
func NewHandler(provider data.Provider, cache storage.SeriesCache, store storage.BarStore, engine *ichimoku.Engine, builder *chart.Builder, rangeStart, rangeEnd time.Time) *Handler {
	return &Handler{
		provider:   provider,
		cache:      cache,
		store:      store,
		engine:     engine,
		builder:    builder,
		rangeStart: rangeStart,
		rangeEnd:   rangeEnd,
	}
}

// GetData handles GET /api/v1/data/{ticker}.
//
// Source resolution for ?source=auto (the default): today's cache entry,
// then the bar store, then the live provider with the result written
// back to the cache. ?source=cache|store|live restricts to one source.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	ticker, err := parseTicker(mux.Vars(r)["ticker"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "auto"
	}

	bars, resolved, err := h.fetchSeries(r, ticker, source)
	if err != nil {
		h.respondWithMappedError(w, ticker, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"ticker": ticker,
		"source": resolved,
		"count":  len(bars),
		"data":   bars,
	})
}

// ichimokuRequest is the POST /api/v1/ichimoku body. Parameter fields
// are pointers so an omitted field falls back to its default.
type ichimokuRequest struct {
	Data            []models.Bar `json:"data"`
	ConversionLen   *int         `json:"conversion_len"`
	BaseLen         *int         `json:"base_len"`
	LaggingLen      *int         `json:"lagging_len"`
	LeadingSpanBLen *int         `json:"leading_span_b_len"`
	CloudShift      *int         `json:"cloud_shift"`
}

func (req *ichimokuRequest) params() models.Params {
	p := models.DefaultParams()
	if req.ConversionLen != nil {
		p.ConversionLen = *req.ConversionLen
	}
	if req.BaseLen != nil {
		p.BaseLen = *req.BaseLen
	}
	if req.LaggingLen != nil {
		p.LaggingLen = *req.LaggingLen
	}
	if req.LeadingSpanBLen != nil {
		p.LeadingSpanBLen = *req.LeadingSpanBLen
	}
	if req.CloudShift != nil {
		p.CloudShift = *req.CloudShift
	}
	return p
}

// ComputeIchimoku handles POST /api/v1/ichimoku.
func (h *Handler) ComputeIchimoku(w http.ResponseWriter, r *http.Request) {
	var req ichimokuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := req.params()
	result, err := h.engine.Compute(req.Data, params)
	if err != nil {
		h.respondWithMappedError(w, "", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"parameters": params,
		"count":      len(result),
		"data":       result,
	})
}

// GetChart handles GET /api/v1/chart/{ticker}: fetch, compute and shape
// in one call. The five parameters are overridable via query values.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	ticker, err := parseTicker(mux.Vars(r)["ticker"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}
	params, err := paramsFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars, _, err := h.fetchSeries(r, ticker, "auto")
	if err != nil {
		h.respondWithMappedError(w, ticker, err)
		return
	}
	result, err := h.engine.Compute(bars, params)
	if err != nil {
		h.respondWithMappedError(w, ticker, err)
		return
	}
	payload, err := h.builder.Build(ticker, bars, result)
	if err != nil {
		h.respondWithMappedError(w, ticker, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"ticker":     ticker,
		"parameters": params,
		"chart":      payload,
	})
}

// Health handles GET /health with per-component statuses. The service
// is degraded, not down, when the cache or the live source is out; only
// a broken bar store fails the check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"provider": h.provider.Name(),
		"cache":    "disabled",
		"store":    "ok",
	}
	status := "healthy"
	code := http.StatusOK

	if h.cache != nil {
		services["cache"] = "ok"
		if _, _, err := h.cache.Get(r.Context(), "_health"); err != nil {
			services["cache"] = "error: " + err.Error()
			status = "degraded"
		}
	}
	if _, err := h.store.ListTickers(r.Context()); err != nil {
		services["store"] = "error: " + err.Error()
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respondWithJSON(w, code, map[string]interface{}{
		"status":   status,
		"services": services,
	})
}

func (h *Handler) fetchSeries(r *http.Request, ticker, source string) ([]models.Bar, string, error) {
	ctx := r.Context()

	if (source == "auto" || source == "cache") && h.cache != nil {
		bars, ok, err := h.cache.Get(ctx, ticker)
		if err != nil {
			logger.Warn("Cache lookup failed",
				logger.String("ticker", ticker),
				logger.ErrorField(err),
			)
		} else if ok && len(bars) > 0 {
			return bars, "cache", nil
		}
	}
	if source == "cache" {
		return nil, "", data.ErrNoData
	}

	if source == "auto" || source == "store" {
		bars, err := h.store.LoadBars(ctx, ticker, h.rangeStart, h.rangeEnd)
		if err != nil {
			logger.Warn("Bar store lookup failed",
				logger.String("ticker", ticker),
				logger.ErrorField(err),
			)
		} else if len(bars) > 0 {
			return bars, "store", nil
		}
	}
	if source == "store" {
		return nil, "", data.ErrNoData
	}

	if source != "auto" && source != "live" {
		return nil, "", models.ErrInvalidTicker
	}

	bars, err := h.provider.Fetch(ctx, ticker, h.rangeStart, h.rangeEnd)
	if err != nil {
		return nil, "", err
	}
	if h.cache != nil && len(bars) > 0 {
		if err := h.cache.Put(ctx, ticker, bars); err != nil {
			logger.Warn("Cache write failed",
				logger.String("ticker", ticker),
				logger.ErrorField(err),
			)
		}
	}
	return bars, h.provider.Name(), nil
}

func (h *Handler) respondWithMappedError(w http.ResponseWriter, ticker string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, data.ErrNoData):
		respondWithError(w, http.StatusNotFound, "No data for ticker "+ticker)
	case errors.Is(err, data.ErrUpstream):
		respondWithError(w, http.StatusBadGateway, "Upstream data source failed")
	default:
		logger.Error("Request failed",
			logger.String("ticker", ticker),
			logger.ErrorField(err),
		)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", models.ErrInvalidTicker
	}
	return ticker, nil
}

func paramsFromQuery(r *http.Request) (models.Params, error) {
	p := models.DefaultParams()
	fields := map[string]*int{
		"conversion_len":     &p.ConversionLen,
		"base_len":           &p.BaseLen,
		"lagging_len":        &p.LaggingLen,
		"leading_span_b_len": &p.LeadingSpanBLen,
		"cloud_shift":        &p.CloudShift,
	}
	for name, target := range fields {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, errors.New("invalid " + name)
		}
		*target = v
	}
	return p, nil
}
