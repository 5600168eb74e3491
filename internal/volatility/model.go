// Package volatility fits GARCH-family conditional volatility models by
// maximum likelihood and forecasts their mean and variance paths.
//
// Fitting happens on percent returns. Callers multiply decimal returns by
// PercentScale before Fit and use Forecast.Descale to come back.
package volatility

import "fmt"

// PercentScale is the factor applied to decimal returns at the fitting boundary
const PercentScale = 100.0

// Family is the structural variance recursion
type Family int

const (
	FamilyGARCH Family = iota
	FamilyEGARCH
)

// String returns the family name
func (f Family) String() string {
	switch f {
	case FamilyGARCH:
		return "GARCH"
	case FamilyEGARCH:
		return "EGARCH"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Distribution is the standardized error distribution
type Distribution int

const (
	DistNormal Distribution = iota
	DistStudentT
	DistGED
	DistSkewT // Hansen skewed Student-t
)

// String returns the distribution name
func (d Distribution) String() string {
	switch d {
	case DistNormal:
		return "normal"
	case DistStudentT:
		return "t"
	case DistGED:
		return "ged"
	case DistSkewT:
		return "skewt"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// Spec identifies one fittable model. LeverageOrder 1 on the GARCH family
// is GJR-GARCH.
type Spec struct {
	Family        Family
	Dist          Distribution
	LeverageOrder int
}

// Validate rejects combinations the fitter does not implement
func (s Spec) Validate() error {
	if s.Family != FamilyGARCH && s.Family != FamilyEGARCH {
		return fmt.Errorf("unknown volatility family %v", s.Family)
	}
	if s.Dist < DistNormal || s.Dist > DistSkewT {
		return fmt.Errorf("unknown distribution %v", s.Dist)
	}
	if s.LeverageOrder < 0 || s.LeverageOrder > 1 {
		return fmt.Errorf("leverage order must be 0 or 1, got %d", s.LeverageOrder)
	}
	if s.Family == FamilyEGARCH && s.LeverageOrder != 0 {
		return fmt.Errorf("EGARCH with leverage order %d is not supported", s.LeverageOrder)
	}
	return nil
}

// Label returns the display name of the structural family
func (s Spec) Label() string {
	if s.Family == FamilyGARCH && s.LeverageOrder == 1 {
		return "GJR-GARCH"
	}
	return s.Family.String()
}

// String returns "<family>_<dist>_<order>"
func (s Spec) String() string {
	return fmt.Sprintf("%s_%s_%d", s.Family, s.Dist, s.LeverageOrder)
}

// Params are the estimated coefficients in percent-return units
type Params struct {
	Mu     float64 `json:"mu"`
	Omega  float64 `json:"omega"`
	Alpha  float64 `json:"alpha"`
	Gamma  float64 `json:"gamma,omitempty"` // GJR leverage term
	Beta   float64 `json:"beta"`
	Nu     float64 `json:"nu,omitempty"`     // t, GED and skew-t shape
	Lambda float64 `json:"lambda,omitempty"` // skew-t asymmetry
}

// FittedModel is the outcome of one maximum-likelihood fit
type FittedModel struct {
	Spec          Spec    `json:"spec"`
	Params        Params  `json:"params"`
	LogLikelihood float64 `json:"log_likelihood"`
	NObs          int     `json:"nobs"`
	Evaluations   int     `json:"evaluations"`

	// State at the last observation, the starting point of every forecast
	LastResidual float64 `json:"last_residual"`
	LastVariance float64 `json:"last_variance"`
}

// Param looks up a coefficient by name. Shape parameters only exist for the
// distributions that carry them.
func (m *FittedModel) Param(name string) (float64, bool) {
	p := m.Params
	switch name {
	case "mu":
		return p.Mu, true
	case "omega":
		return p.Omega, true
	case "alpha":
		return p.Alpha, true
	case "beta":
		return p.Beta, true
	case "gamma":
		return p.Gamma, m.Spec.LeverageOrder == 1
	case "nu":
		return p.Nu, m.Spec.Dist != DistNormal
	case "lambda":
		return p.Lambda, m.Spec.Dist == DistSkewT
	}
	return 0, false
}

// Persistence returns alpha + gamma/2 + beta for GARCH, beta for EGARCH
func (m *FittedModel) Persistence() float64 {
	if m.Spec.Family == FamilyEGARCH {
		return m.Params.Beta
	}
	return m.Params.Alpha + 0.5*m.Params.Gamma + m.Params.Beta
}
