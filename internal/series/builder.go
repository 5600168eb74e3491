// Package series turns price histories into return series.
package series

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"gonum.org/v1/gonum/stat"
)

// MinPortfolioObservations aligned returns required by the portfolio aggregator
const MinPortfolioObservations = 100

// Kind is the return transform
type Kind string

const (
	KindLog    Kind = "log"    // ln(p_t / p_t-1)
	KindSimple Kind = "simple" // p_t / p_t-1 - 1
)

// Returns is a per-step return series. Entry i belongs to bar i+1 of the
// source price series.
type Returns struct {
	Kind   Kind
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations
func (r Returns) Len() int {
	return len(r.Values)
}

// Mean returns the sample mean
func (r Returns) Mean() float64 {
	return stat.Mean(r.Values, nil)
}

// StdDev returns the sample standard deviation (ddof = 1)
func (r Returns) StdDev() float64 {
	return stat.StdDev(r.Values, nil)
}

// Scaled returns a copy of the values multiplied by factor
func (r Returns) Scaled(factor float64) []float64 {
	out := make([]float64, len(r.Values))
	for i, v := range r.Values {
		out[i] = v * factor
	}
	return out
}

// Log builds the log-return series of s
func Log(s *contracts.PriceSeries) Returns {
	return build(s, KindLog)
}

// Simple builds the simple-return series of s
func Simple(s *contracts.PriceSeries) Returns {
	return build(s, KindSimple)
}

func build(s *contracts.PriceSeries, kind Kind) Returns {
	n := len(s.Bars) - 1
	if n < 1 {
		return Returns{Kind: kind}
	}

	out := Returns{
		Kind:   kind,
		Dates:  make([]time.Time, 0, n),
		Values: make([]float64, 0, n),
	}
	for i := 1; i < len(s.Bars); i++ {
		prev, cur := s.Bars[i-1].Close, s.Bars[i].Close

		var r float64
		switch kind {
		case KindLog:
			r = math.Log(cur / prev)
		default:
			r = cur/prev - 1
		}
		// Undefined steps are dropped like NaN rows in a dataframe
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}

		out.Dates = append(out.Dates, s.Bars[i].Date)
		out.Values = append(out.Values, r)
	}
	return out
}

// RequireNonEmpty fails with ErrInsufficientData when no return can be fitted
func RequireNonEmpty(symbol string, r Returns) error {
	if r.Len() == 0 {
		return fmt.Errorf("%w: no usable returns for %s", contracts.ErrInsufficientData, symbol)
	}
	return nil
}

// RequireMin fails with ErrInsufficientData when r is shorter than min
func RequireMin(r Returns, min int) error {
	if r.Len() < min {
		return fmt.Errorf("%w: insufficient historical data for analysis (minimum %d days required, got %d)",
			contracts.ErrInsufficientData, min, r.Len())
	}
	return nil
}
