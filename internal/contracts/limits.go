package contracts

import "fmt"

// Simulation bounds (single entry, run-all, specialty report)
const (
	MinSimulations = 100
	MaxSimulations = 10000
	MinDays        = 1
	MaxDays        = 1000
)

// Portfolio bounds
const (
	MinPortfolioSimulations = 1000
	MaxPortfolioSimulations = 100000
	MaxPortfolioDays        = 252
	MinConfidenceLevel      = 0.90
	MaxConfidenceLevel      = 0.999
)

// Defaults
const (
	DefaultSimulations     = 10000
	DefaultDays            = 252
	DefaultConfidenceLevel = 0.995
)

// SimulationParams are the knobs of a catalogue run
type SimulationParams struct {
	NumSimulations int    `json:"num_simulations"`
	NumDays        int    `json:"num_days"`
	Seed           uint64 `json:"seed,omitempty"` // 0 = random
}

// Validate rejects out-of-range simulation parameters
func (p SimulationParams) Validate() error {
	if p.NumSimulations < MinSimulations || p.NumSimulations > MaxSimulations {
		return fmt.Errorf("%w: num_simulations must be in [%d, %d], got %d",
			ErrValidation, MinSimulations, MaxSimulations, p.NumSimulations)
	}
	if p.NumDays < MinDays || p.NumDays > MaxDays {
		return fmt.Errorf("%w: num_days must be in [%d, %d], got %d",
			ErrValidation, MinDays, MaxDays, p.NumDays)
	}
	return nil
}

// PortfolioParams are the knobs of a portfolio analysis
type PortfolioParams struct {
	NumSimulations  int     `json:"num_simulations"`
	NumDays         int     `json:"num_days"`
	ConfidenceLevel float64 `json:"confidence_level"`
	IncludeGarch    bool    `json:"include_garch"`
	Seed            uint64  `json:"seed,omitempty"`
}

// DefaultPortfolioParams returns the documented defaults
func DefaultPortfolioParams() PortfolioParams {
	return PortfolioParams{
		NumSimulations:  DefaultSimulations,
		NumDays:         DefaultDays,
		ConfidenceLevel: DefaultConfidenceLevel,
	}
}

// Validate rejects out-of-range portfolio parameters
func (p PortfolioParams) Validate() error {
	if p.NumSimulations < MinPortfolioSimulations || p.NumSimulations > MaxPortfolioSimulations {
		return fmt.Errorf("%w: num_simulations must be in [%d, %d], got %d",
			ErrValidation, MinPortfolioSimulations, MaxPortfolioSimulations, p.NumSimulations)
	}
	if p.NumDays < MinDays || p.NumDays > MaxPortfolioDays {
		return fmt.Errorf("%w: num_days must be in [%d, %d], got %d",
			ErrValidation, MinDays, MaxPortfolioDays, p.NumDays)
	}
	if !(p.ConfidenceLevel >= MinConfidenceLevel && p.ConfidenceLevel <= MaxConfidenceLevel) {
		return fmt.Errorf("%w: confidence_level must be in [%.2f, %.3f], got %v",
			ErrValidation, MinConfidenceLevel, MaxConfidenceLevel, p.ConfidenceLevel)
	}
	return nil
}
