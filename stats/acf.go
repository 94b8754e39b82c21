// Package stats provides residual diagnostics for fitted estimates.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ACF calculates the autocorrelation function of values for lags 0 to maxLag.
// It returns nil when the values have no variance.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(values, nil)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf
}

// ConfidenceBound is the 95% bound ±1.96/sqrt(n) for the autocorrelations
// of n white-noise observations.
func ConfidenceBound(n int) float64 {
	if n <= 0 {
		return math.Inf(1)
	}
	return 1.96 / math.Sqrt(float64(n))
}

// SignificantLags returns the lags (excluding lag 0) whose autocorrelation
// exceeds the bound.
func SignificantLags(acf []float64, bound float64) []int {
	var significant []int
	for i := 1; i < len(acf); i++ {
		if math.Abs(acf[i]) > bound {
			significant = append(significant, i)
		}
	}
	return significant
}
