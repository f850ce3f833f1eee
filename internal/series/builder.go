// Package series derives baseline-relative percentage series from daily bars.
package series

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"StockTrends/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Point is one chart sample: a date and a percentage with two decimals.
type Point struct {
	X string
	Y decimal.Decimal
}

func (p Point) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"x":%q,"y":%s}`, p.X, p.Y.StringFixed(2))), nil
}

// Series is the ordered points of one symbol for one metric.
type Series struct {
	Label  string
	Points []Point
}

// Input is one symbol's records in request order.
type Input struct {
	Label   string
	Records []model.OHLCV
}

// Groups holds the close and volume series, in input order.
type Groups struct {
	Close  []Series
	Volume []Series
}

// Computed is the per-symbol result of Compute.
type Computed struct {
	Rows   []model.OHLCV
	Close  []Point
	Volume []Point
	// ClosePct and VolumePct are aligned with Rows; invalid where the value was null.
	ClosePct  []Percent
	VolumePct []Percent
}

// Percent is an optional percentage rendered with two decimals, or null.
type Percent struct {
	Value decimal.Decimal
	Valid bool
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Value.StringFixed(2)), nil
}

// Window returns the records dated on or after start, sorted ascending by date.
// The input slice is not modified.
func Window(records []model.OHLCV, start string) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(records))
	for _, r := range records {
		if r.Date >= start {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// PercentChange returns (value - base) / base * 100 rounded to two decimals.
func PercentChange(value, base decimal.Decimal) decimal.Decimal {
	return value.Sub(base).Div(base).Mul(hundred).Round(2)
}

// Compute filters records to the window starting at start and expresses close
// and volume relative to the first record. It reports false when the window
// is empty or the baseline close or volume is null or zero.
func Compute(records []model.OHLCV, start string) (Computed, bool) {
	rows := Window(records, start)
	if len(rows) == 0 {
		return Computed{}, false
	}
	first := rows[0]
	if !first.Close.Valid || first.Close.Float64 == 0 || !first.Volume.Valid || first.Volume.Int64 == 0 {
		return Computed{}, false
	}
	baseClose := decimal.NewFromFloat(first.Close.Float64)
	baseVolume := decimal.NewFromInt(first.Volume.Int64)

	c := Computed{
		Rows:      rows,
		Close:     make([]Point, 0, len(rows)),
		Volume:    make([]Point, 0, len(rows)),
		ClosePct:  make([]Percent, len(rows)),
		VolumePct: make([]Percent, len(rows)),
	}
	for i, r := range rows {
		if r.Close.Valid {
			pct := PercentChange(decimal.NewFromFloat(r.Close.Float64), baseClose)
			c.Close = append(c.Close, Point{X: r.Date, Y: pct})
			c.ClosePct[i] = Percent{Value: pct, Valid: true}
		}
		if r.Volume.Valid {
			pct := PercentChange(decimal.NewFromInt(r.Volume.Int64), baseVolume)
			c.Volume = append(c.Volume, Point{X: r.Date, Y: pct})
			c.VolumePct[i] = Percent{Value: pct, Valid: true}
		}
	}
	return c, true
}

// Build computes the close and volume groups for every input. Symbols with
// an empty window or unusable baseline are left out of both groups.
func Build(inputs []Input, start string) Groups {
	var g Groups
	for _, in := range inputs {
		c, ok := Compute(in.Records, start)
		if !ok {
			continue
		}
		g.Close = append(g.Close, Series{Label: in.Label, Points: c.Close})
		g.Volume = append(g.Volume, Series{Label: in.Label, Points: c.Volume})
	}
	return g
}

// Labels returns the labels of s in order.
func Labels(s []Series) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.Label
	}
	return out
}
