package api

import (
	"bytes"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/chart"
	"StockTrends/internal/model"
	"StockTrends/internal/series"
)

// row is a record in the requested window with its baseline-relative changes.
type row struct {
	model.OHLCV
	ClosePct  series.Percent `json:"closePct"`
	VolumePct series.Percent `json:"volumePct"`
}

type successEntry struct {
	model.SymbolRef
	Data []row `json:"data"`
}

type failureEntry struct {
	model.SymbolRef
	Error string `json:"error"`
}

// historyResponse is keyed by raw token and keeps request order in the JSON object.
type historyResponse struct {
	keys    []string
	entries []any
}

func (h historyResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(h.entries[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func newHistoryResponse(results []model.Result, startDate string) historyResponse {
	resp := historyResponse{
		keys:    make([]string, 0, len(results)),
		entries: make([]any, 0, len(results)),
	}
	for _, r := range results {
		resp.keys = append(resp.keys, r.Ref.Raw)
		if r.Err != nil {
			resp.entries = append(resp.entries, failureEntry{SymbolRef: r.Ref, Error: r.Err.Error()})
			continue
		}
		resp.entries = append(resp.entries, successEntry{SymbolRef: r.Ref, Data: rows(r.Data, startDate)})
	}
	return resp
}

func rows(records []model.OHLCV, startDate string) []row {
	if c, ok := series.Compute(records, startDate); ok {
		out := make([]row, len(c.Rows))
		for i, rec := range c.Rows {
			out[i] = row{OHLCV: rec, ClosePct: c.ClosePct[i], VolumePct: c.VolumePct[i]}
		}
		return out
	}
	window := series.Window(records, startDate)
	out := make([]row, len(window))
	for i, rec := range window {
		out[i] = row{OHLCV: rec}
	}
	return out
}

type chartsResponse struct {
	chart.Charts
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
