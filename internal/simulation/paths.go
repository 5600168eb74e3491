package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wonny/varlytics/internal/contracts"
	"gonum.org/v1/gonum/mat"
)

// TradingDays per year; one simulated step is 1/TradingDays
const TradingDays = 252

var dt = 1.0 / TradingDays

// Paths is a simulated price matrix (days x paths) and its terminal row.
// Matrix is nil when only terminal prices were kept.
type Paths struct {
	Matrix   *mat.Dense
	Terminal []float64
	Days     int
}

// Count returns the number of simulated paths
func (p *Paths) Count() int {
	return len(p.Terminal)
}

// Request describes one geometric path simulation
type Request struct {
	LastPrice float64
	Mean      []float64 // per-day drift, len Days
	Vol       []float64 // per-day volatility, len Days
	Days      int
	Paths     int
	Shocks    ShockGenerator

	// NoVarianceDrag drops the -vol^2/2 correction from the drift
	NoVarianceDrag bool
}

// Constant returns a per-day path holding v for every day
func Constant(days int, v float64) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = v
	}
	return out
}

func (r Request) validate() error {
	if r.Days < 1 || r.Paths < 1 {
		return fmt.Errorf("%w: days and paths must be positive", contracts.ErrValidation)
	}
	if len(r.Mean) != r.Days || len(r.Vol) != r.Days {
		return fmt.Errorf("%w: drift and volatility paths must have %d entries", contracts.ErrInternal, r.Days)
	}
	if !(r.LastPrice > 0) {
		return fmt.Errorf("%w: last price must be positive", contracts.ErrInsufficientData)
	}
	if r.Shocks == nil {
		return fmt.Errorf("%w: no shock generator", contracts.ErrInternal)
	}
	return nil
}

// run steps every path one day at a time. Shocks are drawn day-major,
// all paths of day d before any path of day d+1.
func (r Request) run(rng *rand.Rand, row func(d int, prices []float64)) []float64 {
	prices := Constant(r.Paths, r.LastPrice)
	z := make([]float64, r.Paths)
	sqrtDt := math.Sqrt(dt)

	for d := 0; d < r.Days; d++ {
		r.Shocks.Fill(z, rng)

		drift := r.Mean[d]
		if !r.NoVarianceDrag {
			drift -= 0.5 * r.Vol[d] * r.Vol[d]
		}
		drift *= dt
		diffusion := r.Vol[d] * sqrtDt

		for s := range prices {
			prices[s] *= math.Exp(drift + diffusion*z[s])
		}
		if row != nil {
			row(d, prices)
		}
	}
	return prices
}

// Simulate keeps the full days x paths price matrix
func Simulate(r Request, rng *rand.Rand) (*Paths, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	m := mat.NewDense(r.Days, r.Paths, nil)
	terminal := r.run(rng, func(d int, prices []float64) {
		m.SetRow(d, prices)
	})
	return &Paths{Matrix: m, Terminal: terminal, Days: r.Days}, nil
}

// SimulateTerminal keeps only the last day. It consumes the same draws as
// Simulate, so both agree on terminal prices for equal rng state.
func SimulateTerminal(r Request, rng *rand.Rand) (*Paths, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &Paths{Terminal: r.run(rng, nil), Days: r.Days}, nil
}
