// Package stats provides residual diagnostics for fitted estimates.
//
// # Autocorrelation
//
//	acf := stats.ACF(residuals, 20)
//	lags := stats.SignificantLags(acf, stats.ConfidenceBound(len(residuals)))
//
// # Residual Tests
//
// The Ljung-Box test checks whether residuals are white noise; a p-value
// below 0.05 indicates remaining autocorrelation:
//
//	lb := stats.LjungBox(residuals, 10, 0)
//	fmt.Printf("Q=%.3f p=%.3f\n", lb.Statistic, lb.PValue)
//
//	d, ok := stats.DurbinWatson(residuals)
package stats
