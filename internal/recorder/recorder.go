package recorder

import (
	"time"

	"StockTrends/internal/model"
)

// Symbol outcome statuses.
const (
	StatusFetched = "FETCHED"
	StatusCached  = "CACHED"
	StatusError   = "ERROR"
)

// SymbolOutcome is how one symbol of a request was served.
type SymbolOutcome struct {
	Symbol string
	Status string
	Rows   int
	Error  string
}

// RequestEvent holds data for one served batch.
type RequestEvent struct {
	ID        string
	Endpoint  string
	StartDate string
	Outcomes  []SymbolOutcome
	Duration  time.Duration
}

// Recorder persists an audit trail of served requests.
type Recorder interface {
	RecordRequest(evt *RequestEvent) error
	Close() error
}

// Outcomes summarizes collector results for recording.
func Outcomes(results []model.Result) []SymbolOutcome {
	out := make([]SymbolOutcome, len(results))
	for i, r := range results {
		o := SymbolOutcome{Symbol: r.Ref.Raw, Rows: len(r.Data)}
		switch {
		case r.Err != nil:
			o.Status = StatusError
			o.Error = r.Err.Error()
		case r.Cached:
			o.Status = StatusCached
		default:
			o.Status = StatusFetched
		}
		out[i] = o
	}
	return out
}
