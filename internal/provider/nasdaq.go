package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/model"
)

const (
	DefaultNasdaqBaseURL = "https://api.nasdaq.com"
	defaultRowLimit      = 400
)

// NasdaqFetcher implements Fetcher using the public api.nasdaq.com quote history endpoint.
type NasdaqFetcher struct {
	BaseURL  string
	RowLimit int
	Client   *http.Client
}

// NewNasdaqFetcher creates a fetcher with optional proxy support.
func NewNasdaqFetcher(baseURL string, rowLimit int, proxyURL string) *NasdaqFetcher {
	if baseURL == "" {
		baseURL = DefaultNasdaqBaseURL
	}
	if rowLimit <= 0 {
		rowLimit = defaultRowLimit
	}
	return &NasdaqFetcher{
		BaseURL:  baseURL,
		RowLimit: rowLimit,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *NasdaqFetcher) Name() string { return NameNasdaq }

// nasdaqHistory is the response structure of /api/quote/{symbol}/historical.
// Every numeric cell is a display string ("$187.32", "52,164,549").
type nasdaqHistory struct {
	Data *struct {
		TradesTable *struct {
			Rows []nasdaqRow `json:"rows"`
		} `json:"tradesTable"`
	} `json:"data"`
}

type nasdaqRow struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

func (f *NasdaqFetcher) Fetch(ctx context.Context, symbol, startDate string) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("assetclass", "stocks")
	q.Set("fromdate", startDate)
	q.Set("limit", strconv.Itoa(f.RowLimit))
	u := fmt.Sprintf("%s/api/quote/%s/historical?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data for symbol "+symbol, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	log.Debug().Str("provider", f.Name()).Str("symbol", symbol).Str("from", startDate).Msg("fetching history")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data for symbol "+symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data for symbol "+symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(f.Name(), symbol, "Failed to fetch data for symbol "+symbol,
			fmt.Errorf("%w %d, body: %s", ErrStatus, resp.StatusCode, truncate(body)))
	}

	var hist nasdaqHistory
	if err := json.Unmarshal(body, &hist); err != nil {
		return nil, newError(f.Name(), symbol, "Invalid data format received for symbol "+symbol,
			fmt.Errorf("%w: %v", ErrUnexpectedPayload, err))
	}
	if hist.Data == nil || hist.Data.TradesTable == nil || hist.Data.TradesTable.Rows == nil {
		return nil, newError(f.Name(), symbol, "Invalid data format received for symbol "+symbol, ErrUnexpectedPayload)
	}

	bars := make([]model.OHLCV, 0, len(hist.Data.TradesTable.Rows))
	for _, row := range hist.Data.TradesTable.Rows {
		date, err := NormalizeDate(row.Date)
		if err != nil {
			log.Warn().Str("provider", f.Name()).Str("symbol", symbol).Err(err).Msg("skipping row")
			continue
		}
		bars = append(bars, model.OHLCV{
			Date:   date,
			Open:   ParsePrice(row.Open),
			High:   ParsePrice(row.High),
			Low:    ParsePrice(row.Low),
			Close:  ParsePrice(row.Close),
			Volume: ParseVolume(row.Volume),
		})
	}
	if len(bars) == 0 {
		return nil, newError(f.Name(), symbol, "No data returned for symbol "+symbol, ErrEmptyResult)
	}
	return bars, nil
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
