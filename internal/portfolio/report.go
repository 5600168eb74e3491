package portfolio

import (
	"math"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/risk"
	"github.com/wonny/varlytics/internal/simulation"
	"github.com/wonny/varlytics/pkg/numfmt"
)

// GarchErrorPrefix prefixes the garch VaR field when the fit fails
const GarchErrorPrefix = "Error: "

// VaR is the value-at-risk block of a report; negative values are losses
type VaR struct {
	VarianceCovariance float64 `json:"variance_covariance"`
	Historical         float64 `json:"historical"`
	MonteCarlo         float64 `json:"monte_carlo"`
	ExpectedShortfall  float64 `json:"expected_shortfall"`

	// Garch is a float64 VaR, an "Error: ..." string, or nil when not requested
	Garch interface{} `json:"garch,omitempty"`
}

// Position is one entry of the portfolio composition
type Position struct {
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
}

// Report is the full portfolio risk report
type Report struct {
	RunID               string              `json:"run_id"`
	TotalValue          float64             `json:"total_value"`
	ExpectedReturn      float64             `json:"expected_return"`      // annualized
	PortfolioVolatility float64             `json:"portfolio_volatility"` // annualized
	SharpeRatio         float64             `json:"sharpe_ratio"`
	VaR                 VaR                 `json:"VaR"`
	ConfidenceLevel     float64             `json:"confidence_level"`
	ForecastHorizonDays int                 `json:"forecast_horizon_days"`
	ProbabilityUp       float64             `json:"probability_up"`
	ProbabilityDown     float64             `json:"probability_down"`
	ExpectedUpside      float64             `json:"expected_upside"`
	ExpectedDownside    float64             `json:"expected_downside"`
	Composition         map[string]Position `json:"portfolio_composition"`
	StressTest          map[string]float64  `json:"stress_test"`
	PortfolioBeta       *float64            `json:"portfolio_beta,omitempty"`
	Observations        int                 `json:"observations"`
	Seed                uint64              `json:"seed"`
}

// DetailedReport is the VaR-focused subset of Report
type DetailedReport struct {
	TotalValue          float64 `json:"total_value"`
	ExpectedReturn      float64 `json:"expected_return"`
	PortfolioVolatility float64 `json:"portfolio_volatility"`
	VaR                 VaR     `json:"VaR"`
	ProbabilityUp       float64 `json:"probability_up"`
	ProbabilityDown     float64 `json:"probability_down"`
	ExpectedUpside      float64 `json:"expected_upside"`
	ExpectedDownside    float64 `json:"expected_downside"`
}

// Detailed projects the report onto its detailed view
func (r *Report) Detailed() *DetailedReport {
	return &DetailedReport{
		TotalValue:          r.TotalValue,
		ExpectedReturn:      r.ExpectedReturn,
		PortfolioVolatility: r.PortfolioVolatility,
		VaR:                 r.VaR,
		ProbabilityUp:       r.ProbabilityUp,
		ProbabilityDown:     r.ProbabilityDown,
		ExpectedUpside:      r.ExpectedUpside,
		ExpectedDownside:    r.ExpectedDownside,
	}
}

// analysis holds the unrounded figures of one run
type analysis struct {
	total     float64
	positions []*position
	returns   []float64
	mean, std float64
	estimates *risk.VaREstimates
	split     risk.SignSplit
	stress    map[string]float64
	garch     float64
	garchErr  error
	beta      *float64
	params    contracts.PortfolioParams
}

func (an *analysis) report(runID string) *Report {
	annualReturn := an.mean * simulation.TradingDays
	annualVol := an.std * math.Sqrt(simulation.TradingDays)
	var sharpe float64
	if annualVol > 0 {
		sharpe = annualReturn / annualVol
	}

	horizon := math.Sqrt(float64(an.params.NumDays))

	r := &Report{
		RunID:               runID,
		TotalValue:          numfmt.Price(an.total),
		ExpectedReturn:      numfmt.Probability(annualReturn),
		PortfolioVolatility: numfmt.Probability(annualVol),
		SharpeRatio:         numfmt.Probability(sharpe),
		VaR: VaR{
			VarianceCovariance: numfmt.Price(an.estimates.VarianceCovariance),
			Historical:         numfmt.Price(an.estimates.Historical),
			MonteCarlo:         numfmt.Price(an.estimates.MonteCarlo),
			ExpectedShortfall:  numfmt.Price(an.estimates.ExpectedShortfall),
		},
		ConfidenceLevel:     an.params.ConfidenceLevel,
		ForecastHorizonDays: an.params.NumDays,
		ProbabilityUp:       numfmt.Probability(an.split.ProbabilityUp),
		ProbabilityDown:     numfmt.Probability(an.split.ProbabilityDown),
		ExpectedUpside:      numfmt.Price(an.total * an.split.MeanUp * horizon),
		ExpectedDownside:    numfmt.Price(an.total * an.split.MeanDown * horizon),
		Composition:         make(map[string]Position, len(an.positions)),
		StressTest:          make(map[string]float64, len(an.stress)),
		Observations:        len(an.returns),
		Seed:                an.params.Seed,
	}

	if an.params.IncludeGarch {
		if an.garchErr != nil {
			r.VaR.Garch = GarchErrorPrefix + an.garchErr.Error()
		} else {
			r.VaR.Garch = numfmt.Price(an.garch)
		}
	}

	for _, p := range an.positions {
		r.Composition[p.Symbol] = Position{
			Quantity:     p.Quantity,
			CurrentPrice: numfmt.Price(p.price),
			Value:        numfmt.Price(p.value),
			Weight:       numfmt.Probability(p.weight),
		}
	}
	for name, v := range an.stress {
		r.StressTest[name] = numfmt.Price(v)
	}
	if an.beta != nil {
		b := numfmt.Probability(*an.beta)
		r.PortfolioBeta = &b
	}

	return r
}
