package provider

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"StockTrends/internal/model"
)

// M/D/YYYY covers the NASDAQ table format with or without zero padding.
var dateLayouts = []string{
	model.DateLayout,
	"1/2/2006",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// NormalizeDate converts a provider date into YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	return strings.ReplaceAll(s, ",", "")
}

// ParsePrice parses values such as "$187.32" or "1,024.5". Anything else is null.
func ParsePrice(s string) null.Float {
	d, err := decimal.NewFromString(cleanNumber(s))
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(d.InexactFloat64())
}

// ParseVolume parses values such as "52,164,549". Fractions are truncated.
func ParseVolume(s string) null.Int {
	d, err := decimal.NewFromString(cleanNumber(s))
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(d.IntPart())
}

// rawPrice accepts a JSON number, a numeric string, or null.
func rawPrice(raw json.RawMessage) null.Float {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return null.Float{}
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return null.Float{}
		}
		return ParsePrice(s)
	}
	return ParsePrice(string(raw))
}

func rawVolume(raw json.RawMessage) null.Int {
	p := rawPrice(raw)
	if !p.Valid {
		return null.Int{}
	}
	return null.IntFrom(int64(p.Float64))
}
