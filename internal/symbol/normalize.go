// Package symbol turns the raw comma-separated symbols parameter into
// validated MARKET:SYMBOL references.
package symbol

import (
	"errors"
	"fmt"
	"strings"

	"StockTrends/internal/model"
)

// MaxSymbols is the largest batch accepted after deduplication.
const MaxSymbols = 10

var (
	ErrNoSymbols      = errors.New("No symbols provided")
	ErrTooManySymbols = fmt.Errorf("More than %d symbols are not allowed", MaxSymbols)
)

// MalformedSymbolError is returned for a token that is not MARKET:SYMBOL.
type MalformedSymbolError struct {
	Token string
}

func (e *MalformedSymbolError) Error() string {
	return fmt.Sprintf("Invalid symbol format: %s", e.Token)
}

// UnsupportedMarketError is returned for a market prefix other than NASDAQ.
type UnsupportedMarketError struct {
	Market string
}

func (e *UnsupportedMarketError) Error() string {
	return fmt.Sprintf("Market %s not supported. Only %s symbols are allowed", e.Market, model.MarketNASDAQ)
}

// Normalize uppercases, trims and dedupes the tokens in raw, keeping the
// order of first occurrence, and validates each one.
func Normalize(raw string) ([]model.SymbolRef, error) {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		return nil, ErrNoSymbols
	}
	if len(tokens) > MaxSymbols {
		return nil, ErrTooManySymbols
	}

	refs := make([]model.SymbolRef, 0, len(tokens))
	for _, tok := range tokens {
		parts := strings.Split(tok, ":")
		if len(parts) != 2 || parts[1] == "" {
			return nil, &MalformedSymbolError{Token: tok}
		}
		if parts[0] != model.MarketNASDAQ {
			return nil, &UnsupportedMarketError{Market: parts[0]}
		}
		refs = append(refs, model.SymbolRef{Raw: tok, Market: parts[0], Symbol: parts[1]})
	}
	return refs, nil
}

// IsValidation reports whether err came from Normalize rejecting the input.
func IsValidation(err error) bool {
	var malformed *MalformedSymbolError
	var market *UnsupportedMarketError
	return errors.Is(err, ErrNoSymbols) || errors.Is(err, ErrTooManySymbols) ||
		errors.As(err, &malformed) || errors.As(err, &market)
}
