package volatility

import "math"

// Shape parameter bounds
const (
	maxPersistence = 0.9999
	tNuMin, tNuMax = 2.05, 500.0
	gedNuMin       = 1.01
	gedNuMax       = 500.0
	lambdaMax      = 0.995
)

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// layout maps an unconstrained optimizer vector onto constrained Params.
// Every point of R^n decodes to a positive, stationary parameter set.
//
//	theta[0]       mu
//	GARCH:         ln omega, logit persistence, share logits (1 or 2)
//	EGARCH:        omega, alpha, atanh beta
//	t, GED:        logit nu
//	skew-t:        logit nu, atanh lambda
type layout struct {
	spec Spec
}

func (l layout) varianceSize() int {
	if l.spec.Family == FamilyEGARCH {
		return 3
	}
	return 3 + l.spec.LeverageOrder
}

func (l layout) size() int {
	n := 1 + l.varianceSize()
	switch l.spec.Dist {
	case DistStudentT, DistGED:
		n++
	case DistSkewT:
		n += 2
	}
	return n
}

func (l layout) decode(theta []float64) Params {
	p := Params{Mu: theta[0]}
	v := theta[1 : 1+l.varianceSize()]

	switch {
	case l.spec.Family == FamilyEGARCH:
		p.Omega = v[0]
		p.Alpha = v[1]
		p.Beta = maxPersistence * math.Tanh(v[2])
	case l.spec.LeverageOrder == 0:
		p.Omega = math.Exp(v[0])
		persistence := maxPersistence * logistic(v[1])
		share := logistic(v[2])
		p.Alpha = persistence * share
		p.Beta = persistence * (1 - share)
	default:
		// softmax over alpha, gamma/2, beta with beta's logit pinned at 0
		p.Omega = math.Exp(v[0])
		persistence := maxPersistence * logistic(v[1])
		ea, eg := math.Exp(v[2]), math.Exp(v[3])
		total := ea + eg + 1
		p.Alpha = persistence * ea / total
		p.Gamma = 2 * persistence * eg / total
		p.Beta = persistence / total
	}

	shape := theta[1+l.varianceSize():]
	switch l.spec.Dist {
	case DistStudentT:
		p.Nu = tNuMin + (tNuMax-tNuMin)*logistic(shape[0])
	case DistGED:
		p.Nu = gedNuMin + (gedNuMax-gedNuMin)*logistic(shape[0])
	case DistSkewT:
		p.Nu = tNuMin + (tNuMax-tNuMin)*logistic(shape[0])
		p.Lambda = lambdaMax * math.Tanh(shape[1])
	}
	return p
}

// start returns the optimizer starting vector for a residual variance
func (l layout) start(mu, variance float64) []float64 {
	theta := make([]float64, 0, l.size())
	theta = append(theta, mu)

	switch {
	case l.spec.Family == FamilyEGARCH:
		const beta = 0.95
		theta = append(theta, math.Log(variance)*(1-beta), 0.1, math.Atanh(beta/maxPersistence))
	case l.spec.LeverageOrder == 0:
		// alpha 0.1, beta 0.8
		const persistence = 0.9
		theta = append(theta,
			math.Log(variance*(1-persistence)),
			logit(persistence/maxPersistence),
			logit(0.1/persistence),
		)
	default:
		// alpha 0.05, gamma 0.1, beta 0.8
		const persistence = 0.05 + 0.05 + 0.8
		theta = append(theta,
			math.Log(variance*(1-persistence)),
			logit(persistence/maxPersistence),
			math.Log(0.05/0.8),
			math.Log(0.05/0.8),
		)
	}

	switch l.spec.Dist {
	case DistStudentT:
		theta = append(theta, logit((8-tNuMin)/(tNuMax-tNuMin)))
	case DistGED:
		theta = append(theta, logit((1.5-gedNuMin)/(gedNuMax-gedNuMin)))
	case DistSkewT:
		theta = append(theta, logit((8-tNuMin)/(tNuMax-tNuMin)), math.Atanh(-0.1/lambdaMax))
	}
	return theta
}
