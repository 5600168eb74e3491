package volatility

import (
	"fmt"
	"math"

	"github.com/wonny/varlytics/internal/contracts"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// MinFitObservations is the shortest series the fitter accepts
const MinFitObservations = 20

// infeasible is returned by the objective outside the valid region
const infeasible = 1e12

// successStatuses are the optimizer outcomes treated as converged
var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
	optimize.MethodConverge:      true,
}

// Fitter estimates volatility models by maximum likelihood
type Fitter struct {
	MaxEvaluations int
}

// NewFitter creates a Fitter with default limits
func NewFitter() *Fitter {
	return &Fitter{MaxEvaluations: 20000}
}

// Fit estimates spec on percent-scaled returns
func (f *Fitter) Fit(returns []float64, spec Spec) (*FittedModel, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrModelFit, err)
	}
	n := len(returns)
	if n < MinFitObservations {
		return nil, fmt.Errorf("%w: %s needs at least %d returns, got %d",
			contracts.ErrInsufficientData, spec, MinFitObservations, n)
	}

	mu := stat.Mean(returns, nil)
	variance := stat.PopVariance(returns, nil)
	if !(variance > 0) {
		return nil, fmt.Errorf("%w: %s: return series has zero variance", contracts.ErrModelFit, spec)
	}

	l := layout{spec: spec}
	resid := make([]float64, n)
	sigma2 := make([]float64, n)
	bounds := [2]float64{variance / 1e6, variance * 1e6}

	objective := func(theta []float64) float64 {
		p := l.decode(theta)
		for i, r := range returns {
			resid[i] = r - p.Mu
		}
		if !varianceFilter(spec, p, resid, sigma2, backcast(resid)) {
			return infeasible
		}
		for _, s2 := range sigma2 {
			if s2 < bounds[0] || s2 > bounds[1] {
				return infeasible
			}
		}
		ll := logLikelihood(spec.Dist, p, resid, sigma2)
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return infeasible
		}
		return -ll
	}

	x0 := l.start(mu, variance)
	settings := &optimize.Settings{
		FuncEvaluations: f.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Relative:   1e-10,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, &optimize.NelderMead{})
	best := bestPoint(nil, result, objective)
	if err != nil || result == nil || !successStatuses[result.Status] {
		// Try with a gradient method from the best simplex point. A stalled
		// line search still leaves a usable location.
		start := x0
		if best != nil {
			start = best.X
		}
		problem := optimize.Problem{
			Func: objective,
			Grad: func(grad, x []float64) {
				fd.Gradient(grad, objective, x, &fd.Settings{Formula: fd.Central})
			},
		}
		var gradErr error
		result, gradErr = optimize.Minimize(problem, start, settings, &optimize.BFGS{})
		best = bestPoint(best, result, objective)
		if best == nil {
			if gradErr == nil {
				gradErr = err
			}
			if gradErr == nil {
				gradErr = fmt.Errorf("optimizer did not converge")
			}
			return nil, fmt.Errorf("%w: %s: no finite optimum: %v", contracts.ErrModelFit, spec, gradErr)
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s: optimum is outside the valid region", contracts.ErrModelFit, spec)
	}

	// Re-evaluate so resid and sigma2 hold the chosen point's filter
	nll := objective(best.X)

	return &FittedModel{
		Spec:          spec,
		Params:        l.decode(best.X),
		LogLikelihood: -nll,
		NObs:          n,
		Evaluations:   best.evaluations,
		LastResidual:  resid[n-1],
		LastVariance:  sigma2[n-1],
	}, nil
}

// candidate is a finite optimizer location and its objective value
type candidate struct {
	X           []float64
	F           float64
	evaluations int
}

// bestPoint returns the better of current and the location in result.
// Locations that are non-finite or outside the valid region are ignored.
func bestPoint(current *candidate, result *optimize.Result, objective func([]float64) float64) *candidate {
	if result == nil || len(result.X) == 0 {
		return current
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return current
		}
	}
	f := objective(result.X)
	if math.IsNaN(f) || f >= infeasible {
		return current
	}
	evals := result.Stats.FuncEvaluations
	if current != nil {
		evals += current.evaluations
		if current.F <= f {
			current.evaluations = evals
			return current
		}
	}
	x := make([]float64, len(result.X))
	copy(x, result.X)
	return &candidate{X: x, F: f, evaluations: evals}
}
