package volatility

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one standardized (zero mean, unit variance) innovation
type Sampler func() float64

// NewSampler returns a standardized sampler for the fitted distribution
func NewSampler(dist Distribution, p Params, rng *rand.Rand) Sampler {
	switch dist {
	case DistStudentT:
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p.Nu, Src: rng}
		scale := math.Sqrt((p.Nu - 2) / p.Nu)
		return func() float64 { return t.Rand() * scale }

	case DistGED:
		// |z/c|^nu / 2 is Gamma(1/nu, 1)
		g := distuv.Gamma{Alpha: 1 / p.Nu, Beta: 1, Src: rng}
		c := math.Exp(gedLogScale(p.Nu))
		inv := 1 / p.Nu
		return func() float64 {
			z := c * math.Pow(2*g.Rand(), inv)
			if rng.Float64() < 0.5 {
				return -z
			}
			return z
		}

	case DistSkewT:
		return skewTSampler(p.Nu, p.Lambda, rng)

	default:
		return rng.NormFloat64
	}
}

// skewTSampler inverts Hansen's skewed t CDF
func skewTSampler(eta, lambda float64, rng *rand.Rand) Sampler {
	_, a, b := hansenConstants(eta, lambda)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: eta}
	scale := math.Sqrt(1 - 2/eta)
	split := (1 - lambda) / 2

	return func() float64 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}

		var q, side float64
		if u < split {
			q = t.Quantile(u / (1 - lambda))
			side = -1
		} else {
			q = t.Quantile(0.5 + (u-split)/(1+lambda))
			side = 1
		}
		return (q*(1+side*lambda)*scale - a) / b
	}
}
