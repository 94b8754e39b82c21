// Package dataset defines the values passed between the stages of a selection run.
package dataset

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/convselect/timeseries"
)

// Master references a raw dataset and the directory its artefacts go to.
type Master struct {
	Name   string
	Path   string
	Series *timeseries.Series
}

// NewMaster checks and wraps a raw series and its output path.
func NewMaster(name, path string, series *timeseries.Series) (*Master, error) {
	if path == "" {
		return nil, errors.New("master needs an output path")
	}
	if series == nil || series.Len() == 0 {
		return nil, errors.Errorf("master %q has no observations", name)
	}
	return &Master{Name: name, Path: path, Series: series}, nil
}

// Scaler is a fitted transform that can be undone.
type Scaler interface {
	Transform(values []float64) []float64
	InverseTransform(values []float64) []float64
}

// Intermediary holds the scaled training and testing splits and the scaler
// fitted on the training split.
type Intermediary struct {
	Training *timeseries.Series
	Testing  *timeseries.Series
	Scaler   Scaler
}

// Windows is one sequenced split. Each row of X holds Timesteps×Channels
// values laid out timestep-major; Y is a column of targets.
type Windows struct {
	X         *mat.Dense
	Y         *mat.Dense
	Timesteps int
	Channels  int
}

// Samples returns the number of windows.
func (w *Windows) Samples() int {
	r, _ := w.X.Dims()
	return r
}

// Sequences holds the supervised arrays of both splits.
type Sequences struct {
	XTr, YTr  *mat.Dense
	XTe, YTe  *mat.Dense
	Timesteps int
	Channels  int
}

// NewSequences joins the training and testing windows, which must agree on
// their shape.
func NewSequences(training, testing *Windows) (*Sequences, error) {
	if training.Timesteps != testing.Timesteps || training.Channels != testing.Channels {
		return nil, errors.Errorf("training windows are %dx%d but testing windows are %dx%d",
			training.Timesteps, training.Channels, testing.Timesteps, testing.Channels)
	}
	return &Sequences{
		XTr:       training.X,
		YTr:       training.Y,
		XTe:       testing.X,
		YTe:       testing.Y,
		Timesteps: training.Timesteps,
		Channels:  training.Channels,
	}, nil
}

// Setting is one point of the hyperparameter grid.
type Setting struct {
	BatchSize  int
	Filters    int
	Activation string
}

func (s Setting) String() string {
	return fmt.Sprintf("batch_size=%d filters=%d activation=%s", s.BatchSize, s.Filters, s.Activation)
}

// Hyperparameters records the winning setting and how many epochs it ran.
type Hyperparameters struct {
	Filters    int    `json:"filters" yaml:"filters"`
	BatchSize  int    `json:"batch_size" yaml:"batch_size"`
	Activation string `json:"activation" yaml:"activation"`
	LHistory   int    `json:"l_history" yaml:"l_history"`
}

// NewHyperparameters snapshots a setting together with its epoch count.
func NewHyperparameters(s Setting, epochs int) Hyperparameters {
	return Hyperparameters{
		Filters:    s.Filters,
		BatchSize:  s.BatchSize,
		Activation: s.Activation,
		LHistory:   epochs,
	}
}
