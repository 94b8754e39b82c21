// Package scaling splits a master series and scales it into the unit range.
package scaling

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
)

// MinMax maps values linearly so the fitted minimum becomes 0 and the fitted
// maximum becomes 1. A constant fit maps everything to 0.
type MinMax struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Scale float64 `json:"scale"`
}

// FitMinMax fits a MinMax scaler to values.
func FitMinMax(values []float64) (*MinMax, error) {
	if len(values) == 0 {
		return nil, errors.New("cannot fit a scaler to no values")
	}

	lo, hi := floats.Min(values), floats.Max(values)
	scale := 0.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	return &MinMax{Min: lo, Max: hi, Scale: scale}, nil
}

// Transform scales values into the fitted range.
func (m *MinMax) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - m.Min) * m.Scale
	}
	return out
}

// InverseTransform undoes Transform. A constant fit maps back to its value.
func (m *MinMax) InverseTransform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if m.Scale == 0 {
			out[i] = m.Min
			continue
		}
		out[i] = v/m.Scale + m.Min
	}
	return out
}

// Scaling turns a master series into a scaled intermediary.
type Scaling struct {
	fraction float64
	logger   *zap.Logger
}

// New creates a Scaling from the data arguments.
func New(args *config.Arguments, logger *zap.Logger) *Scaling {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scaling{fraction: args.Data.TrainingFraction, logger: logger}
}

// Exc splits the master series chronologically, fits a MinMax scaler on the
// training split and scales both splits with it.
func (s *Scaling) Exc(master *dataset.Master) (*dataset.Intermediary, error) {
	if master.Series == nil {
		return nil, errors.Errorf("master %q has no series", master.Name)
	}

	training, testing, err := master.Series.Split(s.fraction)
	if err != nil {
		return nil, errors.Wrapf(err, "splitting %q", master.Name)
	}

	scaler, err := FitMinMax(training.Values)
	if err != nil {
		return nil, err
	}

	scaledTraining, err := training.WithValues(scaler.Transform(training.Values))
	if err != nil {
		return nil, err
	}
	scaledTesting, err := testing.WithValues(scaler.Transform(testing.Values))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scaled master",
		zap.String("master", master.Name),
		zap.Int("training", training.Len()),
		zap.Int("testing", testing.Len()),
		zap.Float64("min", scaler.Min),
		zap.Float64("max", scaler.Max))

	return &dataset.Intermediary{
		Training: scaledTraining,
		Testing:  scaledTesting,
		Scaler:   scaler,
	}, nil
}
