// Package palette assigns mutually distinguishable colours to series labels.
package palette

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"StockTrends/internal/model"
)

// Theme selects the colour range so lines contrast with the chart background.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// DefaultThreshold applies to label counts missing from thresholds.
const DefaultThreshold = 50.0

// DefaultMaxAttempts bounds the number of candidate mappings tried by Assign.
const DefaultMaxAttempts = 2000

// channelSpan is the width of the per-channel sampling range.
const channelSpan = 192

// Fewer labels leave room for more separation.
var thresholds = map[int]float64{
	2: 80,
	3: 72,
	4: 60,
}

// Threshold returns the minimum pairwise distance required for n labels.
func Threshold(n int) float64 {
	if t, ok := thresholds[n]; ok {
		return t
	}
	return DefaultThreshold
}

// Distance is the "redmean" weighted RGB difference: green counts most, and
// red and blue are weighted by where the pair sits on the red axis.
func Distance(a, b model.RGB) float64 {
	rmean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt((2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db)
}

// Assignment is the result of Assign.
type Assignment struct {
	Colors map[string]model.RGB
	// MinDistance is the smallest pairwise distance; +Inf for fewer than two labels.
	MinDistance float64
	Attempts    int
	// Satisfied is false when the attempt budget ran out and the best candidate was kept.
	Satisfied bool
}

// Generator samples colours for one theme. It is safe for concurrent use.
type Generator struct {
	theme       Theme
	maxAttempts int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng uses the global source.
func NewGenerator(theme Theme, maxAttempts int, rng *rand.Rand) *Generator {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{theme: theme, maxAttempts: maxAttempts, rng: rng}
}

func (g *Generator) Theme() Theme { return g.theme }

func (g *Generator) intN(n int) int {
	if g.rng == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// Color samples one colour: channels below 192 for light, above 63 for dark.
func (g *Generator) Color() model.RGB {
	r, gr, b := g.intN(channelSpan), g.intN(channelSpan), g.intN(channelSpan)
	if g.theme == ThemeDark {
		r, gr, b = 255-r, 255-gr, 255-b
	}
	return model.RGB{R: uint8(r), G: uint8(gr), B: uint8(b)}
}

// Assign samples a full mapping per attempt until every pair of colours is
// farther apart than Threshold(len(labels)). When the attempt budget runs out
// the candidate with the largest minimum distance is returned.
func (g *Generator) Assign(labels []string) Assignment {
	threshold := Threshold(len(labels))
	best := Assignment{MinDistance: -1}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		colors := make([]model.RGB, len(labels))
		for i := range colors {
			colors[i] = g.Color()
		}
		d := MinPairDistance(colors)
		if d > best.MinDistance {
			best = Assignment{Colors: mapping(labels, colors), MinDistance: d, Attempts: attempt}
		}
		if d > threshold {
			best.Attempts = attempt
			best.Satisfied = true
			return best
		}
	}

	best.Attempts = g.maxAttempts
	log.Warn().
		Int("labels", len(labels)).
		Float64("threshold", threshold).
		Float64("best", best.MinDistance).
		Int("attempts", g.maxAttempts).
		Msg("colour search exhausted, using best candidate")
	return best
}

// MinPairDistance returns the smallest Distance over all unordered pairs.
func MinPairDistance(colors []model.RGB) float64 {
	min := math.Inf(1)
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			if d := Distance(colors[i], colors[j]); d < min {
				min = d
			}
		}
	}
	return min
}

func mapping(labels []string, colors []model.RGB) map[string]model.RGB {
	m := make(map[string]model.RGB, len(labels))
	for i, l := range labels {
		m[l] = colors[i]
	}
	return m
}
