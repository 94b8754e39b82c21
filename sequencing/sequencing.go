// Package sequencing reshapes a series into supervised windows.
package sequencing

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/timeseries"
)

// Sequencing slides a window over a series. Each window of Window values is
// paired with the value Horizon steps after its last element.
type Sequencing struct {
	Window  int
	Horizon int
}

// New creates a Sequencing from the sequencing arguments.
func New(args *config.Arguments) *Sequencing {
	return &Sequencing{Window: args.Sequencing.Window, Horizon: args.Sequencing.Horizon}
}

// Samples returns how many windows a series of n observations yields.
func (s *Sequencing) Samples(n int) int {
	k := n - s.Window - s.Horizon + 1
	if k < 0 {
		return 0
	}
	return k
}

// TargetIndex returns the index, within the sequenced series, of the target
// of window i.
func (s *Sequencing) TargetIndex(i int) int {
	return i + s.Window + s.Horizon - 1
}

// Exc builds the windows of blob: X is samples×Window with one channel and
// Y is samples×1.
func (s *Sequencing) Exc(blob *timeseries.Series) (*dataset.Windows, error) {
	if s.Window < 1 || s.Horizon < 1 {
		return nil, errors.Errorf("window %d and horizon %d must be positive", s.Window, s.Horizon)
	}

	samples := s.Samples(blob.Len())
	if samples == 0 {
		return nil, errors.Errorf("%d observations are too few for a window of %d and a horizon of %d",
			blob.Len(), s.Window, s.Horizon)
	}

	x := mat.NewDense(samples, s.Window, nil)
	y := mat.NewDense(samples, 1, nil)
	for i := 0; i < samples; i++ {
		x.SetRow(i, blob.Values[i:i+s.Window])
		y.Set(i, 0, blob.Values[s.TargetIndex(i)])
	}

	return &dataset.Windows{X: x, Y: y, Timesteps: s.Window, Channels: 1}, nil
}
