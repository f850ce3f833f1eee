package model

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the canonical calendar date form used for cache keys, comparisons and output.
const DateLayout = "2006-01-02"

// MarketNASDAQ is the only supported market prefix.
const MarketNASDAQ = "NASDAQ"

// SymbolRef is one validated MARKET:SYMBOL token from a request.
type SymbolRef struct {
	Raw    string `json:"raw"`
	Market string `json:"market"`
	Symbol string `json:"symbol"`
}

// OHLCV represents a single daily bar. Numeric fields are null when the
// provider sent a value that could not be parsed.
type OHLCV struct {
	Date   string     `json:"date"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Int   `json:"volume"`
}

// Result is the outcome of fetching one symbol: either Data or Err is set.
type Result struct {
	Ref    SymbolRef
	Data   []OHLCV
	Err    error
	Cached bool
}

// OK reports whether the symbol was fetched or served from cache successfully.
func (r Result) OK() bool { return r.Err == nil }

// ParseDate parses a canonical YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// RGB is a display colour.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalText renders the colour in CSS rgb() form.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
