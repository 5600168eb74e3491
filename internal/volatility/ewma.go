package volatility

import (
	"fmt"
	"math"

	"github.com/wonny/varlytics/internal/contracts"
)

// RiskMetricsLambda is the RiskMetrics daily decay factor
const RiskMetricsLambda = 0.94

// EWMAVariance returns the last exponentially weighted variance of returns.
// The recursion starts at r0^2 and follows v = lambda*v + (1-lambda)*r^2.
func EWMAVariance(returns []float64, lambda float64) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("%w: EWMA needs at least one return", contracts.ErrInsufficientData)
	}
	if lambda <= 0 || lambda >= 1 {
		return 0, fmt.Errorf("%w: EWMA decay must be in (0, 1), got %v", contracts.ErrValidation, lambda)
	}

	v := returns[0] * returns[0]
	for _, r := range returns[1:] {
		v = lambda*v + (1-lambda)*r*r
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: EWMA variance is not finite", contracts.ErrInsufficientData)
	}
	return v, nil
}
