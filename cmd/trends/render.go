package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"StockTrends/internal/chart"
	"StockTrends/internal/series"
)

var ticks = []rune("▁▂▃▄▅▆▇█")

func render(w io.Writer, datasets []chart.Dataset) {
	if len(datasets) == 0 {
		fmt.Fprintln(w, "no series to show")
		return
	}
	width := 0
	for _, ds := range datasets {
		width = max(width, len(ds.Label))
	}
	for _, ds := range datasets {
		c := color.RGB(int(ds.BorderColor.R), int(ds.BorderColor.G), int(ds.BorderColor.B))
		first, last := bounds(ds.Data)
		fmt.Fprintf(w, "%s  %7s%% -> %7s%%  %s\n",
			c.Sprintf("%-*s", width, ds.Label),
			first.StringFixed(2), last.StringFixed(2),
			c.Sprint(sparkline(ds.Data)))
	}
}

func bounds(points []series.Point) (first, last decimal.Decimal) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero
	}
	return points[0].Y, points[len(points)-1].Y
}

// sparkline scales points between their own min and max.
func sparkline(points []series.Point) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		lo = decimal.Min(lo, p.Y)
		hi = decimal.Max(hi, p.Y)
	}
	span := hi.Sub(lo)
	top := decimal.NewFromInt(int64(len(ticks) - 1))

	var b strings.Builder
	for _, p := range points {
		idx := 0
		if !span.IsZero() {
			idx = int(p.Y.Sub(lo).Div(span).Mul(top).Round(0).IntPart())
		}
		b.WriteRune(ticks[idx])
	}
	return b.String()
}
