package risk

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// monteCarloStream PCG stream reserved for portfolio Monte Carlo draws
const monteCarloStream = 0x7661725f6d63

// MonteCarloSimulator parametric normal Monte Carlo for portfolio VaR
type MonteCarloSimulator struct {
	config MonteCarloConfig
	rng    *rand.Rand
}

// NewMonteCarloSimulator creates a simulator; Seed 0 draws a random seed
func NewMonteCarloSimulator(config MonteCarloConfig) (*MonteCarloSimulator, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &MonteCarloSimulator{
		config: config,
		rng:    rand.New(rand.NewPCG(seed, monteCarloStream)),
	}, nil
}

// Simulate draws N(mean, std) daily returns, scales them by sqrt(holding period)
// and returns the (1 - confidence) percentile of the scaled draws.
func (mc *MonteCarloSimulator) Simulate(mean, std float64) *MonteCarloResult {
	scale := math.Sqrt(float64(mc.config.HoldingPeriod))

	draws := make([]float64, mc.config.NumSimulations)
	for i := range draws {
		draws[i] = (mean + std*mc.rng.NormFloat64()) * scale
	}

	return &MonteCarloResult{
		RunID:      uuid.New().String(),
		Config:     mc.config,
		Quantile:   PercentileOf(draws, (1-mc.config.Confidence)*100),
		MeanReturn: Mean(draws),
		StdDev:     StdDev(draws),
		CreatedAt:  time.Now(),
	}
}
