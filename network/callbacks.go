package network

import (
	"math"

	"github.com/pkg/errors"
)

// Callback hooks into Fit.
type Callback interface {
	OnTrainBegin(m *Model)
	// OnEpochEnd returns true to stop training after this epoch.
	OnEpochEnd(epoch int, logs Logs, m *Model) (bool, error)
	OnTrainEnd(m *Model)
}

// EarlyStopping stops training once the monitored metric has not decreased
// by more than MinDelta for Patience consecutive epochs.
type EarlyStopping struct {
	Monitor            string
	MinDelta           float64
	Patience           int
	RestoreBestWeights bool

	wait         int
	best         float64
	bestEpoch    int
	bestWeights  [][]float64
	stoppedEpoch int
}

// NewEarlyStopping creates an early stopping callback minimising monitor.
func NewEarlyStopping(monitor string, minDelta float64, patience int, restoreBestWeights bool) *EarlyStopping {
	return &EarlyStopping{
		Monitor:            monitor,
		MinDelta:           math.Abs(minDelta),
		Patience:           patience,
		RestoreBestWeights: restoreBestWeights,
	}
}

// OnTrainBegin resets the callback state.
func (e *EarlyStopping) OnTrainBegin(_ *Model) {
	e.wait = 0
	e.best = math.Inf(1)
	e.bestEpoch = 0
	e.bestWeights = nil
	e.stoppedEpoch = 0
}

// OnEpochEnd implements Callback.
func (e *EarlyStopping) OnEpochEnd(epoch int, logs Logs, m *Model) (bool, error) {
	current, ok := logs[e.Monitor]
	if !ok {
		return false, errors.Errorf("early stopping monitors %q, which is not logged", e.Monitor)
	}

	if e.RestoreBestWeights && e.bestWeights == nil {
		e.bestWeights = m.Weights()
	}

	e.wait++
	if current+e.MinDelta < e.best {
		e.best = current
		e.bestEpoch = epoch
		if e.RestoreBestWeights {
			e.bestWeights = m.Weights()
		}
		e.wait = 0
		return false, nil
	}

	if e.wait >= e.Patience && epoch > 0 {
		e.stoppedEpoch = epoch
		return true, nil
	}
	return false, nil
}

// OnTrainEnd restores the best weights when asked to.
func (e *EarlyStopping) OnTrainEnd(m *Model) {
	if e.RestoreBestWeights && e.bestWeights != nil {
		// Shapes cannot change during training.
		_ = m.SetWeights(e.bestWeights)
	}
}

// Best returns the best monitored value and the epoch it was seen at.
func (e *EarlyStopping) Best() (float64, int) { return e.best, e.bestEpoch }

// StoppedEpoch returns the epoch training stopped at, or 0 if it ran out.
func (e *EarlyStopping) StoppedEpoch() int { return e.stoppedEpoch }
