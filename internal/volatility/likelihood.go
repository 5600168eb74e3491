package volatility

import "math"

var (
	ln2   = math.Log(2)
	ln2Pi = math.Log(2 * math.Pi)
)

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// logLikelihood sums the per-observation log densities of resid given sigma2
func logLikelihood(dist Distribution, p Params, resid, sigma2 []float64) float64 {
	switch dist {
	case DistStudentT:
		return studentTLogLikelihood(p.Nu, resid, sigma2)
	case DistGED:
		return gedLogLikelihood(p.Nu, resid, sigma2)
	case DistSkewT:
		return skewTLogLikelihood(p.Nu, p.Lambda, resid, sigma2)
	default:
		return normalLogLikelihood(resid, sigma2)
	}
}

func normalLogLikelihood(resid, sigma2 []float64) float64 {
	var ll float64
	for t, e := range resid {
		ll += -0.5 * (ln2Pi + math.Log(sigma2[t]) + e*e/sigma2[t])
	}
	return ll
}

// studentTLogLikelihood uses the unit-variance Student-t, nu > 2
func studentTLogLikelihood(nu float64, resid, sigma2 []float64) float64 {
	c := lgamma((nu+1)/2) - lgamma(nu/2) - 0.5*math.Log(math.Pi*(nu-2))
	var ll float64
	for t, e := range resid {
		ll += c - 0.5*math.Log(sigma2[t]) -
			(nu+1)/2*math.Log(1+e*e/(sigma2[t]*(nu-2)))
	}
	return ll
}

// gedLogScale returns ln(c) of the unit-variance generalized error distribution
func gedLogScale(nu float64) float64 {
	return 0.5 * (-2/nu*ln2 + lgamma(1/nu) - lgamma(3/nu))
}

func gedLogLikelihood(nu float64, resid, sigma2 []float64) float64 {
	logC := gedLogScale(nu)
	c := math.Exp(logC)
	k := math.Log(nu) - logC - lgamma(1/nu) - (1+1/nu)*ln2
	var ll float64
	for t, e := range resid {
		s := math.Sqrt(sigma2[t])
		ll += k - 0.5*math.Log(sigma2[t]) - 0.5*math.Pow(math.Abs(e/(s*c)), nu)
	}
	return ll
}

// hansenConstants returns ln(c), a and b of Hansen's skewed t
func hansenConstants(eta, lambda float64) (logC, a, b float64) {
	logC = lgamma((eta+1)/2) - lgamma(eta/2) - 0.5*math.Log(math.Pi*(eta-2))
	a = 4 * lambda * math.Exp(logC) * (eta - 2) / (eta - 1)
	b = math.Sqrt(1 + 3*lambda*lambda - a*a)
	return logC, a, b
}

func skewTLogLikelihood(eta, lambda float64, resid, sigma2 []float64) float64 {
	logC, a, b := hansenConstants(eta, lambda)
	if math.IsNaN(b) {
		return math.Inf(-1)
	}

	var ll float64
	for t, e := range resid {
		z := e / math.Sqrt(sigma2[t])
		sign := 1.0
		if z < -a/b {
			sign = -1.0
		}
		u := (b*z + a) / (1 + sign*lambda)
		ll += math.Log(b) + logC - 0.5*math.Log(sigma2[t]) -
			(eta+1)/2*math.Log(1+u*u/(eta-2))
	}
	return ll
}
