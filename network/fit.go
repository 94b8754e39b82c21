package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// FitOptions controls a training run.
type FitOptions struct {
	Epochs    int
	BatchSize int
	// Shuffle reorders the samples every epoch using Rand.
	Shuffle   bool
	Rand      *rand.Rand
	Callbacks []Callback
	Logger    *zap.Logger
}

// Fit trains the model on x and y with mini-batch gradient descent on the
// mean squared error. Each epoch logs the sample-weighted mean training loss
// and its root. Fit stops early when a callback asks to, and fails if the
// loss stops being finite.
func (m *Model) Fit(x, y *mat.Dense, opts FitOptions) (*History, error) {
	if m.optimizer == nil {
		return nil, errors.New("model is not compiled")
	}
	if err := m.checkTargets(x, y); err != nil {
		return nil, err
	}
	if opts.Epochs < 1 {
		return nil, errors.Errorf("epochs must be positive, got %d", opts.Epochs)
	}
	if opts.BatchSize < 1 {
		return nil, errors.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.Shuffle && opts.Rand == nil {
		return nil, errors.New("shuffling needs a random source")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	n, _ := x.Dims()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	history := NewHistory()
	m.history = history

	for _, cb := range opts.Callbacks {
		cb.OnTrainBegin(m)
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if opts.Shuffle {
			opts.Rand.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		sse, count := 0.0, 0
		for start := 0; start < n; start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > n {
				end = n
			}
			batchSSE, rows := m.step(x, y, order[start:end])
			sse += batchSSE
			count += rows
		}

		loss := sse / float64(count)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return history, errors.Errorf("training diverged at epoch %d: loss is %v", epoch, loss)
		}

		logs := Logs{LogLoss: loss, LogRMSE: math.Sqrt(loss)}
		history.Append(epoch, logs)
		logger.Debug("epoch",
			zap.Int("epoch", epoch+1),
			zap.Int("epochs", opts.Epochs),
			zap.Float64(LogLoss, loss),
			zap.Float64(LogRMSE, logs[LogRMSE]))

		stop := false
		for _, cb := range opts.Callbacks {
			halt, err := cb.OnEpochEnd(epoch, logs, m)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d", epoch)
			}
			stop = stop || halt
		}
		if stop {
			logger.Debug("stopping early", zap.Int("epoch", epoch+1))
			break
		}
	}

	for _, cb := range opts.Callbacks {
		cb.OnTrainEnd(m)
	}
	return history, nil
}

// step runs one mini-batch update over the given sample rows and returns the
// batch sum of squared errors and the number of outputs it covered.
func (m *Model) step(x, y *mat.Dense, rows []int) (float64, int) {
	_, c := x.Dims()
	xb := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		copy(xb.RawRowView(i), x.RawRowView(r))
	}
	target := expandTargets(y, rows, m.output.Steps)

	out := m.forward(xb)
	diff, sse := squaredError(out, target)

	outRows, _ := diff.Dims()
	diff.Scale(2/float64(outRows), diff)
	m.backward(diff)
	m.optimizer.update(m.params())

	return sse, outRows
}
