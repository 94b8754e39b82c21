// Package estimates writes the chosen model's in-sample and out-of-sample
// estimates with their error metrics and residual diagnostics.
//
// Every window of both splits is predicted, observations and estimates are
// mapped back to the original units with the fitted scaler, and the results
// are written under the master path:
//
//   - estimates.csv: split, timestamp, observation, estimate, residual
//   - metrics.json: MSE, RMSE, MAE, MAPE, Ljung-Box and Durbin-Watson per split
//   - estimates.png: observations and estimates, when estimates.plot is set
package estimates
