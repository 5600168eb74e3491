package risk

import "time"

// =============================================================================
// Sign Convention
// =============================================================================

// VaRConvention VaR sign convention
// SSOT: losses are negative currency amounts (VaR = -1200 means a 1200 loss)
const VaRConvention = "loss_negative"

// =============================================================================
// VaR Types
// =============================================================================

// VaRInput portfolio return series plus the horizon and confidence to evaluate
type VaRInput struct {
	TotalValue  float64   `json:"total_value"`
	Returns     []float64 `json:"-"`           // daily simple returns
	Confidence  float64   `json:"confidence"`  // e.g. 0.995
	Days        int       `json:"days"`        // horizon, square-root-of-time scaling
	Simulations int       `json:"simulations"` // Monte Carlo draws
	Seed        uint64    `json:"seed"`        // 0 = random
}

// VaREstimates currency VaR by four methods
type VaREstimates struct {
	VarianceCovariance float64 `json:"variance_covariance"`
	Historical         float64 `json:"historical"`
	MonteCarlo         float64 `json:"monte_carlo"`
	ExpectedShortfall  float64 `json:"expected_shortfall"`

	ZScore    float64 `json:"-"`
	Threshold float64 `json:"-"` // historical return quantile
}

// SignSplit empirical up/down statistics of a return series
type SignSplit struct {
	ProbabilityUp   float64 `json:"probability_up"`
	ProbabilityDown float64 `json:"probability_down"`
	MeanUp          float64 `json:"mean_up"`   // 0 when no positive return
	MeanDown        float64 `json:"mean_down"` // 0 when no negative return
}

// =============================================================================
// Monte Carlo Types
// =============================================================================

// MonteCarloConfig draws for the parametric Monte Carlo VaR
// SSOT: every knob is recorded for reproducibility
type MonteCarloConfig struct {
	NumSimulations int     `json:"num_simulations"`
	HoldingPeriod  int     `json:"holding_period"` // days
	Confidence     float64 `json:"confidence"`
	Seed           uint64  `json:"seed"` // 0 = random
}

// MonteCarloResult return quantile of the simulated horizon returns
type MonteCarloResult struct {
	RunID      string           `json:"run_id"`
	Config     MonteCarloConfig `json:"config"`
	Quantile   float64          `json:"quantile"` // (1-confidence) percentile of horizon returns
	MeanReturn float64          `json:"mean_return"`
	StdDev     float64          `json:"std_dev"`
	CreatedAt  time.Time        `json:"created_at"`
}

// =============================================================================
// Stress Test Types
// =============================================================================

// Scenario instantaneous value shock per symbol, "*" shocks every symbol
type Scenario struct {
	Name   string             `json:"name"`
	Shocks map[string]float64 `json:"shocks"`
}

// DefaultScenarios market-wide crash and boom scenarios
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "market_crash_20", Shocks: map[string]float64{"*": -0.20}},
		{Name: "market_crash_30", Shocks: map[string]float64{"*": -0.30}},
		{Name: "market_boom_20", Shocks: map[string]float64{"*": 0.20}},
		{Name: "market_boom_30", Shocks: map[string]float64{"*": 0.30}},
	}
}
