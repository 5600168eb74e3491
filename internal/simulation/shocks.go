package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/wonny/varlytics/internal/volatility"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultStudentTNu is used when a fit carries no degrees of freedom
const DefaultStudentTNu = 10.0

// ShockGenerator fills one simulated day of shocks, one per path
type ShockGenerator interface {
	Fill(dst []float64, rng *rand.Rand)
}

// NormalShocks draws standard normals
type NormalShocks struct{}

func (NormalShocks) Fill(dst []float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = rng.NormFloat64()
	}
}

// SkewedNormalShocks bends standard normals by z - skew*|z|
type SkewedNormalShocks struct {
	Skew float64
}

func (s SkewedNormalShocks) Fill(dst []float64, rng *rand.Rand) {
	for i := range dst {
		z := rng.NormFloat64()
		dst[i] = z - s.Skew*math.Abs(z)
	}
}

// StudentTShocks draws standard (not unit-variance) Student-t values
type StudentTShocks struct {
	Nu float64
}

func (s StudentTShocks) Fill(dst []float64, rng *rand.Rand) {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: s.Nu, Src: rng}
	for i := range dst {
		dst[i] = t.Rand()
	}
}

// SkewNormalShocks draws Azzalini skew-normal values with shape parameter Shape
type SkewNormalShocks struct {
	Shape float64
}

func (s SkewNormalShocks) Fill(dst []float64, rng *rand.Rand) {
	delta := s.Shape / math.Sqrt(1+s.Shape*s.Shape)
	rest := math.Sqrt(1 - delta*delta)
	for i := range dst {
		u0 := rng.NormFloat64()
		u1 := rng.NormFloat64()
		dst[i] = delta*math.Abs(u0) + rest*u1
	}
}

// SkewTShocks draws delta*|u| + sqrt(1-delta^2)*v with u ~ t(Nu), v ~ N(0,1).
// Skew is an Azzalini-style shape and is unbounded. The specialty report
// passes the fitted Hansen lambda, which lies in (-1, 1), so its draws are
// only mildly skewed. Draws are not standardized.
type SkewTShocks struct {
	Nu   float64
	Skew float64
}

func (s SkewTShocks) Fill(dst []float64, rng *rand.Rand) {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: s.Nu, Src: rng}
	delta := s.Skew / math.Sqrt(1+s.Skew*s.Skew)
	rest := math.Sqrt(1 - delta*delta)
	for i := range dst {
		u := t.Rand()
		v := rng.NormFloat64()
		dst[i] = delta*math.Abs(u) + rest*v
	}
}

// ShocksFor returns the shock policy of a parametric catalogue entry.
// GED shocks without skew fall back to standard normals: there is no
// native GED path sampler.
func ShocksFor(dist volatility.Distribution, skew, nu float64) ShockGenerator {
	if nu <= 0 {
		nu = DefaultStudentTNu
	}

	switch dist {
	case volatility.DistStudentT:
		if skew != 0 {
			return SkewNormalShocks{Shape: skew}
		}
		return StudentTShocks{Nu: nu}
	case volatility.DistGED:
		if skew != 0 {
			return SkewNormalShocks{Shape: skew}
		}
		return NormalShocks{}
	case volatility.DistSkewT:
		return SkewTShocks{Nu: nu, Skew: skew}
	default:
		if skew != 0 {
			return SkewedNormalShocks{Skew: skew}
		}
		return NormalShocks{}
	}
}
