package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/model"
)

const DefaultTiingoBaseURL = "https://api.tiingo.com"

// TiingoFetcher implements Fetcher using the Tiingo end-of-day REST API.
// Free accounts are limited to 50 requests per hour.
type TiingoFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewTiingoFetcher creates a new fetcher with optional proxy support.
func NewTiingoFetcher(baseURL, token, proxyURL string) *TiingoFetcher {
	if baseURL == "" {
		baseURL = DefaultTiingoBaseURL
	}
	return &TiingoFetcher{
		BaseURL: baseURL,
		Token:   token,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *TiingoFetcher) Name() string { return NameTiingo }

// tiingoBar is the expected JSON shape of one element of the prices array.
type tiingoBar struct {
	Date   string          `json:"date"`
	Open   json.RawMessage `json:"open"`
	High   json.RawMessage `json:"high"`
	Low    json.RawMessage `json:"low"`
	Close  json.RawMessage `json:"close"`
	Volume json.RawMessage `json:"volume"`
}

func (f *TiingoFetcher) Fetch(ctx context.Context, symbol, startDate string) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data from Tiingo for symbol "+symbol, err)
	}
	req.Header.Set("Authorization", "Token "+f.Token)
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("provider", f.Name()).Str("symbol", symbol).Str("from", startDate).Msg("fetching history")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data from Tiingo for symbol "+symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(f.Name(), symbol, "Failed to fetch data from Tiingo for symbol "+symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(f.Name(), symbol, "Failed to fetch data from Tiingo for symbol "+symbol,
			fmt.Errorf("%w %d, body: %s", ErrStatus, resp.StatusCode, truncate(body)))
	}

	var raw []tiingoBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newError(f.Name(), symbol, "Invalid data format received from Tiingo for symbol "+symbol,
			fmt.Errorf("%w: %v", ErrUnexpectedPayload, err))
	}
	if len(raw) == 0 {
		return nil, newError(f.Name(), symbol, "No data returned from Tiingo for symbol "+symbol, ErrEmptyResult)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, tb := range raw {
		date, err := NormalizeDate(tb.Date)
		if err != nil {
			log.Warn().Str("provider", f.Name()).Str("symbol", symbol).Err(err).Msg("skipping row")
			continue
		}
		bars = append(bars, model.OHLCV{
			Date:   date,
			Open:   rawPrice(tb.Open),
			High:   rawPrice(tb.High),
			Low:    rawPrice(tb.Low),
			Close:  rawPrice(tb.Close),
			Volume: rawVolume(tb.Volume),
		})
	}
	if len(bars) == 0 {
		return nil, newError(f.Name(), symbol, "No data returned from Tiingo for symbol "+symbol, ErrEmptyResult)
	}
	return bars, nil
}
