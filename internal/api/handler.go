package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/cache"
	"StockTrends/internal/chart"
	"StockTrends/internal/model"
	"StockTrends/internal/palette"
	"StockTrends/internal/recorder"
	"StockTrends/internal/series"
)

// Collector fetches one batch of symbols.
type Collector interface {
	Collect(ctx context.Context, refs []model.SymbolRef, startDate string) []model.Result
}

// Handler serves the historical data, chart and health endpoints.
type Handler struct {
	collector     Collector
	providerName  string
	cache         *cache.Store
	recorder      recorder.Recorder
	palettes      map[palette.Theme]*palette.Generator
	defaultTheme  palette.Theme
	allowedOrigin string
	validate      *validator.Validate
	now           func() time.Time
}

// Options configures a Handler. Zero values fall back to defaults.
type Options struct {
	ProviderName     string
	Cache            *cache.Store
	Recorder         recorder.Recorder
	Theme            palette.Theme
	MaxColorAttempts int
	AllowedOrigin    string
	Now              func() time.Time
}

func NewHandler(c Collector, opts Options) *Handler {
	h := &Handler{
		collector:     c,
		providerName:  opts.ProviderName,
		cache:         opts.Cache,
		recorder:      opts.Recorder,
		defaultTheme:  opts.Theme,
		allowedOrigin: opts.AllowedOrigin,
		validate:      validator.New(),
		now:           opts.Now,
	}
	if h.recorder == nil {
		h.recorder = recorder.NewNoopRecorder()
	}
	if h.defaultTheme == "" {
		h.defaultTheme = palette.ThemeLight
	}
	if h.allowedOrigin == "" {
		h.allowedOrigin = "*"
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.palettes = map[palette.Theme]*palette.Generator{
		palette.ThemeLight: palette.NewGenerator(palette.ThemeLight, opts.MaxColorAttempts, nil),
		palette.ThemeDark:  palette.NewGenerator(palette.ThemeDark, opts.MaxColorAttempts, nil),
	}
	return h
}

// Routes returns the API mux wrapped in CORS, logging and recovery.
// guards wrap the /api routes only; /health stays open.
func (h *Handler) Routes(guards ...func(http.Handler) http.Handler) http.Handler {
	protect := func(f http.HandlerFunc) http.Handler {
		var next http.Handler = f
		for _, g := range guards {
			next = g(next)
		}
		return next
	}

	mux := http.NewServeMux()
	mux.Handle("/api/getHistoricalData", protect(h.GetHistoricalData))
	mux.Handle("/api/charts", protect(h.GetCharts))
	mux.HandleFunc("/health", h.Health)
	return Recover(LogRequests(h.cors(mux)))
}

func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHistoricalData godoc
// GET /api/getHistoricalData?symbols=NASDAQ:AAPL,NASDAQ:MSFT&startDate=2024-06-01
func (h *Handler) GetHistoricalData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	started := time.Now()

	b, ok := h.parse(w, r)
	if !ok {
		return
	}

	results := h.collector.Collect(r.Context(), b.Refs, b.StartDate)
	h.record(r.URL.Path, b.StartDate, results, time.Since(started))

	writeJSON(w, http.StatusOK, newHistoryResponse(results, b.StartDate))
}

// GetCharts godoc
// GET /api/charts?symbols=NASDAQ:AAPL,NASDAQ:MSFT&startDate=2024-06-01&theme=dark
func (h *Handler) GetCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	started := time.Now()

	b, ok := h.parse(w, r)
	if !ok {
		return
	}
	theme := b.Theme
	if theme == "" {
		theme = h.defaultTheme
	}

	results := h.collector.Collect(r.Context(), b.Refs, b.StartDate)
	h.record(r.URL.Path, b.StartDate, results, time.Since(started))

	inputs := make([]series.Input, 0, len(results))
	failures := make(map[string]string)
	for _, res := range results {
		if res.Err != nil {
			failures[res.Ref.Raw] = res.Err.Error()
			continue
		}
		inputs = append(inputs, series.Input{Label: res.Ref.Raw, Records: res.Data})
	}

	writeJSON(w, http.StatusOK, chartsResponse{
		Charts: chart.Build(inputs, b.StartDate, h.palettes[theme]),
		Errors: failures,
	})
}

// Health reports liveness and the active provider.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	cached := 0
	if h.cache != nil {
		cached = h.cache.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"provider":      h.providerName,
		"cachedSymbols": cached,
	})
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (*batch, bool) {
	b, err := parseBatch(h.validate, r, h.now())
	if err == nil {
		return b, true
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Msg)
		return nil, false
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("parse request")
	writeError(w, http.StatusInternalServerError, "internal server error")
	return nil, false
}

func (h *Handler) record(endpoint, startDate string, results []model.Result, elapsed time.Duration) {
	evt := &recorder.RequestEvent{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		StartDate: startDate,
		Outcomes:  recorder.Outcomes(results),
		Duration:  elapsed,
	}
	if err := h.recorder.RecordRequest(evt); err != nil {
		log.Warn().Err(err).Str("request_id", evt.ID).Msg("record request")
	}
}
