package estimates

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/convselect/stats"
)

// Metrics summarises the residuals of one split.
type Metrics struct {
	Samples int     `json:"samples"`
	MSE     float64 `json:"mse"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
	// MAPE is in percent over the non-zero observations; nil when every
	// observation is zero.
	MAPE         *float64              `json:"mape"`
	LjungBox     *stats.LjungBoxResult `json:"ljung_box"`
	DurbinWatson *float64              `json:"durbin_watson"`
	// SignificantLags lists the residual autocorrelation lags, up to lags,
	// outside the 95% white-noise bound.
	SignificantLags []int `json:"significant_lags"`
}

// Evaluate computes error metrics and residual diagnostics for records.
// The Ljung-Box test uses lags lags and is nil for fewer than ten records.
func Evaluate(records []*Record, lags int) *Metrics {
	m := &Metrics{Samples: len(records)}
	if len(records) == 0 {
		return m
	}

	residuals := make([]float64, len(records))
	ape, nonzero := 0.0, 0
	for i, r := range records {
		residuals[i] = r.Residual
		if r.Observation != 0 {
			ape += math.Abs(r.Residual / r.Observation)
			nonzero++
		}
	}

	n := float64(len(residuals))
	m.MSE = floats.Dot(residuals, residuals) / n
	m.RMSE = math.Sqrt(m.MSE)
	m.MAE = floats.Norm(residuals, 1) / n
	if nonzero > 0 {
		mape := 100 * ape / float64(nonzero)
		m.MAPE = &mape
	}

	m.LjungBox = stats.LjungBox(residuals, lags, 0)
	m.SignificantLags = stats.SignificantLags(stats.ACF(residuals, lags), stats.ConfidenceBound(len(residuals)))
	if m.SignificantLags == nil {
		m.SignificantLags = []int{}
	}
	if d, ok := stats.DurbinWatson(residuals); ok {
		m.DurbinWatson = &d
	}
	return m
}
