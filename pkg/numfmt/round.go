// Package numfmt rounds report values to fixed decimal places.
package numfmt

import (
	"math"

	"github.com/shopspring/decimal"
)

// Price and probability precision used in reports
const (
	PricePlaces       int32 = 2
	ProbabilityPlaces int32 = 4
)

// Round rounds v half away from zero at the given number of places.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Price rounds v to price precision
func Price(v float64) float64 {
	return Round(v, PricePlaces)
}

// Probability rounds v to probability precision
func Probability(v float64) float64 {
	return Round(v, ProbabilityPlaces)
}
