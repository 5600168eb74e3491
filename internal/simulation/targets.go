package simulation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/varlytics/pkg/numfmt"
	"gonum.org/v1/gonum/mat"
)

// TargetPercents are the price moves probed by InferTargets
var TargetPercents = []float64{-10, -5, -2, 2, 5, 10}

// Narrative thresholds
const (
	likelyProbability = 20.0
	earlyHitFraction  = 0.7
)

// Direction of a price target relative to the last price
const (
	DirectionDownside = "downside"
	DirectionUpside   = "upside"
)

// TargetInference is the first-touch analysis of one price target
type TargetInference struct {
	TargetPrice        float64 `json:"target_price"`
	ChangePercent      float64 `json:"change_percent"`
	Direction          string  `json:"direction"`
	ProbabilityPercent float64 `json:"probability_percent"`
	AverageDayToHit    *int    `json:"average_day_to_hit"`
	Description        string  `json:"description"`
}

// InferTargets reports, for each target, the share of paths whose
// trajectory ever touches it and the average first-touch day index.
// Downside targets are touched at or below, upside at or above.
func InferTargets(m *mat.Dense, lastPrice float64) []TargetInference {
	days, paths := m.Dims()
	raw := m.RawMatrix()

	out := make([]TargetInference, 0, len(TargetPercents))
	for _, pct := range TargetPercents {
		target := numfmt.Price(lastPrice * (1 + pct/100))
		downside := target < lastPrice

		hits := 0
		firstSum := 0
		for s := 0; s < paths; s++ {
			for d := 0; d < days; d++ {
				v := raw.Data[d*raw.Stride+s]
				if (downside && v <= target) || (!downside && v >= target) {
					hits++
					firstSum += d
					break
				}
			}
		}

		probability := float64(hits) / float64(paths) * 100
		inf := TargetInference{
			TargetPrice:        target,
			ChangePercent:      numfmt.Price((target - lastPrice) / lastPrice * 100),
			Direction:          DirectionUpside,
			ProbabilityPercent: numfmt.Price(probability),
		}
		if downside {
			inf.Direction = DirectionDownside
		}

		var desc strings.Builder
		fmt.Fprintf(&desc, "~%.1f%% chance of touching %s during the simulation period.", probability, formatPrice(target))
		if hits > 0 {
			avg := float64(firstSum) / float64(hits)
			switch {
			case probability >= likelyProbability && avg <= float64(days)*earlyHitFraction:
				day := int(math.RoundToEven(avg))
				inf.AverageDayToHit = &day
				fmt.Fprintf(&desc, " On average, this happens around day %d.", day)
			case probability < likelyProbability:
				desc.WriteString(" But it rarely occurs in most simulations.")
			default:
				desc.WriteString(" When it happens, it usually occurs late in the simulation period.")
			}
		}
		inf.Description = desc.String()

		out = append(out, inf)
	}
	return out
}

// formatPrice prints the shortest decimal form, always with a fraction
func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
