package volatility

import "math"

const (
	backcastDecay = 0.94
	backcastLen   = 75

	// ln(max float64); EGARCH log variance is capped here
	lnSigmaMax = 709.0
)

// egarchNormConst is E|z| for a standard normal
var egarchNormConst = math.Sqrt(2 / math.Pi)

// backcast is the exponentially weighted mean of the first squared residuals,
// used in place of the unobserved pre-sample variance
func backcast(resid []float64) float64 {
	tau := len(resid)
	if tau > backcastLen {
		tau = backcastLen
	}

	var sum, norm float64
	w := 1.0
	for i := 0; i < tau; i++ {
		sum += w * resid[i] * resid[i]
		norm += w
		w *= backcastDecay
	}
	return sum / norm
}

// varianceFilter runs the conditional variance recursion over resid into
// sigma2. It reports false when the recursion leaves the finite range.
func varianceFilter(spec Spec, p Params, resid, sigma2 []float64, bc float64) bool {
	if spec.Family == FamilyEGARCH {
		return egarchFilter(p, resid, sigma2, bc)
	}

	// Pre-sample lags use the backcast, the asymmetric lag half of it
	lagEps2, lagNeg, lagSigma2 := bc, 0.5*bc, bc
	for t := range resid {
		s2 := p.Omega + p.Alpha*lagEps2 + p.Gamma*lagNeg + p.Beta*lagSigma2
		if !(s2 > 0) || math.IsInf(s2, 0) {
			return false
		}
		sigma2[t] = s2

		e2 := resid[t] * resid[t]
		lagEps2, lagSigma2 = e2, s2
		lagNeg = 0
		if resid[t] < 0 {
			lagNeg = e2
		}
	}
	return true
}

func egarchFilter(p Params, resid, sigma2 []float64, bc float64) bool {
	lnBackcast := math.Log(bc)
	var lnLag float64
	for t := range resid {
		ln := p.Omega
		if t == 0 {
			ln += p.Beta * lnBackcast
		} else {
			absStd := math.Abs(resid[t-1]) / math.Sqrt(sigma2[t-1])
			ln += p.Alpha*(absStd-egarchNormConst) + p.Beta*lnLag
		}
		if ln > lnSigmaMax {
			ln = lnSigmaMax
		}
		if math.IsNaN(ln) {
			return false
		}
		lnLag = ln
		sigma2[t] = math.Exp(ln)
		if !(sigma2[t] > 0) {
			return false
		}
	}
	return true
}

// nextVariance advances the recursion one step given the current variance and residual
func nextVariance(spec Spec, p Params, sigma2, resid float64) float64 {
	if spec.Family == FamilyEGARCH {
		absStd := math.Abs(resid) / math.Sqrt(sigma2)
		ln := p.Omega + p.Alpha*(absStd-egarchNormConst) + p.Beta*math.Log(sigma2)
		if ln > lnSigmaMax {
			ln = lnSigmaMax
		}
		return math.Exp(ln)
	}

	e2 := resid * resid
	s2 := p.Omega + p.Alpha*e2 + p.Beta*sigma2
	if resid < 0 {
		s2 += p.Gamma * e2
	}
	return s2
}
