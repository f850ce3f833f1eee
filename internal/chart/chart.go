// Package chart assembles the close and volume percentage charts with one
// shared colour per symbol.
package chart

import (
	"StockTrends/internal/model"
	"StockTrends/internal/palette"
	"StockTrends/internal/series"
)

const lineTension = 0.2

// Dataset is one line in chart.js form.
type Dataset struct {
	Label           string         `json:"label"`
	Data            []series.Point `json:"data"`
	BorderColor     model.RGB      `json:"borderColor"`
	BackgroundColor model.RGB      `json:"backgroundColor"`
	Fill            bool           `json:"fill"`
	Tension         float64        `json:"tension"`
}

// Data is a chart's dataset list.
type Data struct {
	Datasets []Dataset `json:"datasets"`
}

// Charts is the finished pair of charts plus the colour each label received.
type Charts struct {
	Close        Data                 `json:"closeChartData"`
	Volume       Data                 `json:"volumeChartData"`
	ColorMapping map[string]model.RGB `json:"colorMapping"`
}

// Build derives both series groups from inputs and colours them with gen.
func Build(inputs []series.Input, start string, gen *palette.Generator) Charts {
	groups := series.Build(inputs, start)
	assignment := gen.Assign(series.Labels(groups.Close))

	return Charts{
		Close:        apply(groups.Close, assignment.Colors),
		Volume:       apply(groups.Volume, assignment.Colors),
		ColorMapping: assignment.Colors,
	}
}

func apply(group []series.Series, colors map[string]model.RGB) Data {
	d := Data{Datasets: make([]Dataset, 0, len(group))}
	for _, s := range group {
		c := colors[s.Label]
		d.Datasets = append(d.Datasets, Dataset{
			Label:           s.Label,
			Data:            s.Points,
			BorderColor:     c,
			BackgroundColor: c,
			Fill:            false,
			Tension:         lineTension,
		})
	}
	return d
}
