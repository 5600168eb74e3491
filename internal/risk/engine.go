package risk

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Engine portfolio risk calculator
// SSOT: pure calculation, no I/O
type Engine struct{}

// NewEngine creates a risk engine
func NewEngine() *Engine {
	return &Engine{}
}

// Errors
var (
	ErrInsufficientData = errors.New("insufficient data for risk calculation")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// =============================================================================
// VaR Methods
// =============================================================================

// Estimate evaluates variance-covariance, historical, Monte Carlo VaR and expected shortfall
func (e *Engine) Estimate(ctx context.Context, in VaRInput) (*VaREstimates, error) {
	if len(in.Returns) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 returns, got %d", ErrInsufficientData, len(in.Returns))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mean := Mean(in.Returns)
	std := StdDev(in.Returns)
	z := ZScore(in.Confidence)

	sorted := make([]float64, len(in.Returns))
	copy(sorted, in.Returns)
	sort.Float64s(sorted)

	historical, threshold := HistoricalVaR(in.TotalValue, sorted, in.Confidence, in.Days)

	mc, err := NewMonteCarloSimulator(MonteCarloConfig{
		NumSimulations: in.Simulations,
		HoldingPeriod:  in.Days,
		Confidence:     in.Confidence,
		Seed:           in.Seed,
	})
	if err != nil {
		return nil, err
	}
	mcResult := mc.Simulate(mean, std)

	return &VaREstimates{
		VarianceCovariance: VarianceCovarianceVaR(in.TotalValue, mean, std, z, in.Days),
		Historical:         historical,
		MonteCarlo:         in.TotalValue * mcResult.Quantile,
		ExpectedShortfall:  ExpectedShortfall(in.TotalValue, in.Returns, threshold, in.Days),
		ZScore:             z,
		Threshold:          threshold,
	}, nil
}

// =============================================================================
// Stress Test
// =============================================================================

// StressTest portfolio return per scenario
// weights: per-symbol weight map[symbol]weight
func (e *Engine) StressTest(weights map[string]float64, scenarios []Scenario) map[string]float64 {
	results := make(map[string]float64, len(scenarios))

	for _, scenario := range scenarios {
		var portfolioShock float64

		for symbol, weight := range weights {
			shock, exists := scenario.Shocks[symbol]
			if !exists {
				// market-wide shock
				shock, exists = scenario.Shocks["*"]
				if !exists {
					continue
				}
			}
			portfolioShock += weight * shock
		}

		results[scenario.Name] = portfolioShock
	}

	return results
}

// StressValues stressed portfolio value per scenario: total * (1 + shock)
func (e *Engine) StressValues(totalValue float64, weights map[string]float64, scenarios []Scenario) map[string]float64 {
	shocks := e.StressTest(weights, scenarios)
	values := make(map[string]float64, len(shocks))
	for name, shock := range shocks {
		values[name] = totalValue * (1 + shock)
	}
	return values
}

// =============================================================================
// Utility Functions
// =============================================================================

// CalculatePortfolioReturns weighted sum of aligned asset return series.
// weights[i] applies to assetReturns[i]; the result has the shortest series length.
func CalculatePortfolioReturns(weights []float64, assetReturns [][]float64) []float64 {
	if len(weights) != len(assetReturns) || len(assetReturns) == 0 {
		return nil
	}

	minLen := -1
	for _, returns := range assetReturns {
		if minLen == -1 || len(returns) < minLen {
			minLen = len(returns)
		}
	}

	if minLen <= 0 {
		return nil
	}

	portfolioReturns := make([]float64, minLen)
	for i := 0; i < minLen; i++ {
		var dayReturn float64
		for k, weight := range weights {
			dayReturn += weight * assetReturns[k][i]
		}
		portfolioReturns[i] = dayReturn
	}

	return portfolioReturns
}

// ValidateConfig checks Monte Carlo settings
func ValidateConfig(config MonteCarloConfig) error {
	if config.NumSimulations <= 0 {
		return fmt.Errorf("%w: NumSimulations must be > 0", ErrInvalidConfig)
	}
	if config.HoldingPeriod <= 0 {
		return fmt.Errorf("%w: HoldingPeriod must be > 0", ErrInvalidConfig)
	}
	if config.Confidence <= 0 || config.Confidence >= 1 {
		return fmt.Errorf("%w: Confidence must be between 0 and 1", ErrInvalidConfig)
	}
	return nil
}
