package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/timeseries"
)

func TestMinMax(t *testing.T) {
	scaler, err := FitMinMax([]float64{10, 20, 30})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1.5}, scaler.Transform([]float64{10, 20, 30, 40}), 1e-12)
	assert.InDeltaSlice(t, []float64{10, 25, 40}, scaler.InverseTransform([]float64{0, 0.75, 1.5}), 1e-12)
}

func TestMinMaxConstant(t *testing.T) {
	scaler, err := FitMinMax([]float64{4, 4, 4})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0}, scaler.Transform([]float64{4, 9}))
	assert.Equal(t, []float64{4, 4}, scaler.InverseTransform([]float64{0, 0.3}))
}

func TestFitMinMaxEmpty(t *testing.T) {
	_, err := FitMinMax(nil)
	assert.Error(t, err)
}

func TestScalingExc(t *testing.T) {
	args := config.Default()
	args.Data.TrainingFraction = 0.8

	values := []float64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}
	master, err := dataset.NewMaster("ramp", "/out/ramp", timeseries.New(values))
	require.NoError(t, err)

	intermediary, err := New(args, zaptest.NewLogger(t)).Exc(master)
	require.NoError(t, err)

	require.Equal(t, 8, intermediary.Training.Len())
	require.Equal(t, 2, intermediary.Testing.Len())

	// Fitted on the training split only: 0..14.
	assert.InDelta(t, 0, intermediary.Training.Values[0], 1e-12)
	assert.InDelta(t, 1, intermediary.Training.Values[7], 1e-12)
	assert.InDelta(t, 16.0/14, intermediary.Testing.Values[0], 1e-12)

	assert.Equal(t, master.Series.Timestamps[8], intermediary.Testing.Timestamps[0])
	assert.InDeltaSlice(t, []float64{16, 18}, intermediary.Scaler.InverseTransform(intermediary.Testing.Values), 1e-9)

	// The master is left untouched.
	assert.Equal(t, 18.0, master.Series.Values[9])
}

func TestScalingExcErrors(t *testing.T) {
	args := config.Default()
	s := New(args, nil)

	_, err := s.Exc(&dataset.Master{Name: "empty"})
	assert.Error(t, err)

	_, err = s.Exc(&dataset.Master{Name: "short", Series: timeseries.New([]float64{1})})
	assert.Error(t, err)
}
