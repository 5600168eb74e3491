package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// =============================================================================
// VaR (Value at Risk) Calculation
// =============================================================================

// ZScore standard normal quantile at 1 - confidence (negative for confidence > 0.5)
func ZScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile(1 - confidence)
}

// VarianceCovarianceVaR total * (mean + z*std) * sqrt(days)
func VarianceCovarianceVaR(totalValue, mean, std, z float64, days int) float64 {
	return totalValue * (mean + z*std) * math.Sqrt(float64(days))
}

// HistoricalIndex position of the (1 - confidence) quantile in n sorted returns
func HistoricalIndex(n int, confidence float64) int {
	idx := int(math.Floor((1 - confidence) * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// HistoricalVaR total * sorted[idx] * sqrt(days); also returns the threshold return
func HistoricalVaR(totalValue float64, sorted []float64, confidence float64, days int) (float64, float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	threshold := sorted[HistoricalIndex(len(sorted), confidence)]
	return totalValue * threshold * math.Sqrt(float64(days)), threshold
}

// ExpectedShortfall total * mean(returns <= threshold) * sqrt(days)
func ExpectedShortfall(totalValue float64, returns []float64, threshold float64, days int) float64 {
	var sum float64
	var count int
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return totalValue * (sum / float64(count)) * math.Sqrt(float64(days))
}

// GARCHVaR total * (mean*days + z*sqrt(cumulative variance)/100).
// cumulativeVariance is in percent-squared units.
func GARCHVaR(totalValue, mean, z, cumulativeVariance float64, days int) float64 {
	vol := math.Sqrt(cumulativeVariance) / 100
	return totalValue * (mean*float64(days) + z*vol)
}

// SplitBySign empirical probability and mean of positive and negative returns
func SplitBySign(returns []float64) SignSplit {
	if len(returns) == 0 {
		return SignSplit{}
	}

	var up, down []float64
	for _, r := range returns {
		switch {
		case r > 0:
			up = append(up, r)
		case r < 0:
			down = append(down, r)
		}
	}

	n := float64(len(returns))
	return SignSplit{
		ProbabilityUp:   float64(len(up)) / n,
		ProbabilityDown: float64(len(down)) / n,
		MeanUp:          Mean(up),
		MeanDown:        Mean(down),
	}
}

// =============================================================================
// Statistics utilities
// =============================================================================

// Mean arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev sample standard deviation (ddof = 1)
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Beta cov(portfolio, market) with ddof 1 over the population variance of market
func Beta(portfolio, market []float64) (float64, bool) {
	if len(portfolio) != len(market) || len(market) < 2 {
		return 0, false
	}
	variance := stat.PopVariance(market, nil)
	if variance == 0 {
		return 0, false
	}
	return stat.Covariance(portfolio, market, nil) / variance, true
}

// Percentile linear interpolation between closest ranks of sorted values (p in 0..100)
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PercentileOf sorts a copy of values and returns its p-th percentile
func PercentileOf(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, p)
}
