package network

import "math"

// Keys of the per-epoch logs.
const (
	LogLoss = "loss"
	LogRMSE = "root_mean_squared_error"
)

// Logs maps a metric name to its value for one epoch.
type Logs map[string]float64

// History records the logs of every epoch that ran.
type History struct {
	Epochs []int                `json:"epochs"`
	Values map[string][]float64 `json:"values"`
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{Values: map[string][]float64{}}
}

// Append records the logs of one epoch.
func (h *History) Append(epoch int, logs Logs) {
	h.Epochs = append(h.Epochs, epoch)
	for k, v := range logs {
		h.Values[k] = append(h.Values[k], v)
	}
}

// Len returns the number of epochs recorded.
func (h *History) Len() int { return len(h.Epochs) }

// Loss returns the per-epoch training loss.
func (h *History) Loss() []float64 { return h.Values[LogLoss] }

// MinLoss returns the lowest training loss recorded, or +Inf when none was.
func (h *History) MinLoss() float64 {
	best := math.Inf(1)
	for _, v := range h.Loss() {
		if v < best {
			best = v
		}
	}
	return best
}
