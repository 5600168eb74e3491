package simulation

import (
	"github.com/wonny/varlytics/internal/risk"
	"github.com/wonny/varlytics/pkg/numfmt"
	"gonum.org/v1/gonum/floats"
)

// Proximity bands around the sample extremes used by P(min) and P(max)
const (
	minBand = 1.05
	maxBand = 0.95
)

// Summary of the terminal price distribution.
// PMin is the share of terminal prices within 5% above the sample minimum,
// PMax the share within 5% below the sample maximum.
type Summary struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	PMin float64 `json:"P(min)"`
	PMax float64 `json:"P(max)"`
}

// Summarize reduces terminal prices to a rounded Summary
func Summarize(terminal []float64) Summary {
	if len(terminal) == 0 {
		return Summary{}
	}

	lo, hi := floats.Min(terminal), floats.Max(terminal)
	var nearMin, nearMax int
	for _, p := range terminal {
		if p <= lo*minBand {
			nearMin++
		}
		if p >= hi*maxBand {
			nearMax++
		}
	}
	n := float64(len(terminal))

	return Summary{
		Mean: numfmt.Price(risk.Mean(terminal)),
		Min:  numfmt.Price(lo),
		Max:  numfmt.Price(hi),
		PMin: numfmt.Probability(float64(nearMin) / n),
		PMax: numfmt.Probability(float64(nearMax) / n),
	}
}

// TerminalPercentile returns the p-th percentile (0-100) of terminal prices
func TerminalPercentile(terminal []float64, p float64) float64 {
	return risk.PercentileOf(terminal, p)
}
