package volatility

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wonny/varlytics/internal/contracts"
)

// DefaultForecastPaths is the number of simulated variance paths
const DefaultForecastPaths = 1000

// Forecast holds per-step conditional mean and variance in percent units
type Forecast struct {
	Mean     []float64
	Variance []float64
}

// Horizon returns the number of forecast steps
func (f *Forecast) Horizon() int {
	return len(f.Mean)
}

// Descale converts to decimal mean and volatility paths
func (f *Forecast) Descale() (mean, vol []float64) {
	mean = make([]float64, len(f.Mean))
	vol = make([]float64, len(f.Variance))
	for i := range f.Mean {
		mean[i] = f.Mean[i] / PercentScale
		vol[i] = math.Sqrt(f.Variance[i]) / PercentScale
	}
	return mean, vol
}

// CumulativeVariance sums the variance path
func (f *Forecast) CumulativeVariance() float64 {
	var sum float64
	for _, v := range f.Variance {
		sum += v
	}
	return sum
}

// oneStepVariance is the deterministic variance of the first forecast step
func (m *FittedModel) oneStepVariance() float64 {
	return nextVariance(m.Spec, m.Params, m.LastVariance, m.LastResidual)
}

func (m *FittedModel) meanPath(horizon int) []float64 {
	mean := make([]float64, horizon)
	for i := range mean {
		mean[i] = m.Params.Mu
	}
	return mean
}

// SimulateForecast averages the variance recursion over paths simulated
// forward with innovations from the fitted distribution
func (m *FittedModel) SimulateForecast(horizon, paths int, rng *rand.Rand) (*Forecast, error) {
	if horizon < 1 || paths < 1 {
		return nil, fmt.Errorf("%w: forecast horizon and paths must be positive", contracts.ErrValidation)
	}

	draw := NewSampler(m.Spec.Dist, m.Params, rng)
	first := m.oneStepVariance()
	sum := make([]float64, horizon)

	for s := 0; s < paths; s++ {
		s2 := first
		for h := 0; h < horizon; h++ {
			sum[h] += s2
			if h+1 < horizon {
				s2 = nextVariance(m.Spec, m.Params, s2, math.Sqrt(s2)*draw())
			}
		}
	}

	variance := make([]float64, horizon)
	for h := range sum {
		variance[h] = sum[h] / float64(paths)
		if math.IsNaN(variance[h]) || math.IsInf(variance[h], 0) || variance[h] <= 0 {
			return nil, fmt.Errorf("%w: %s forecast diverged at step %d", contracts.ErrModelFit, m.Spec, h+1)
		}
	}

	return &Forecast{Mean: m.meanPath(horizon), Variance: variance}, nil
}

// ErrNoAnalyticForecast is returned for families without a closed form
var ErrNoAnalyticForecast = errors.New("analytic multi-step forecast not available")

// AnalyticForecast iterates the expected variance recursion of GARCH and
// GJR-GARCH: sigma2[h] = omega + (alpha + gamma/2 + beta) * sigma2[h-1]
func (m *FittedModel) AnalyticForecast(horizon int) (*Forecast, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: forecast horizon must be positive", contracts.ErrValidation)
	}
	if m.Spec.Family != FamilyGARCH {
		return nil, fmt.Errorf("%w for %s", ErrNoAnalyticForecast, m.Spec.Family)
	}

	persistence := m.Persistence()
	variance := make([]float64, horizon)
	variance[0] = m.oneStepVariance()
	for h := 1; h < horizon; h++ {
		variance[h] = m.Params.Omega + persistence*variance[h-1]
	}

	return &Forecast{Mean: m.meanPath(horizon), Variance: variance}, nil
}
