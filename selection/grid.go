package selection

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
)

// Candidate is one trained grid setting.
type Candidate struct {
	dataset.Setting
	Model   *network.Model
	History *network.History
}

// Loss returns the lowest training loss the candidate reached, or +Inf when
// it has no history.
func (c *Candidate) Loss() float64 {
	if c.History == nil {
		return math.Inf(1)
	}
	return c.History.MinLoss()
}

// Epochs returns the number of epochs the candidate trained for.
func (c *Candidate) Epochs() int {
	if c.History == nil {
		return 0
	}
	return c.History.Len()
}

// Hyperparameters snapshots the candidate's setting and epoch count.
func (c *Candidate) Hyperparameters() dataset.Hyperparameters {
	return dataset.NewHyperparameters(c.Setting, c.Epochs())
}

// Grid expands the modelling lists into their cartesian product, with batch
// size varying slowest and activation fastest.
func Grid(m *config.Modelling) []dataset.Setting {
	var settings []dataset.Setting
	for _, b := range m.BatchSize {
		for _, f := range m.Filters {
			for _, a := range m.Activation {
				settings = append(settings, dataset.Setting{BatchSize: b, Filters: f, Activation: a})
			}
		}
	}
	return settings
}

// Select trains every setting in order and keeps the candidate with the
// lowest minimum training loss. The first candidate is adopted outright;
// later ones replace it only when strictly better, so ties keep the earlier.
func Select(trainer Trainer, sequences *dataset.Sequences, settings []dataset.Setting) (*Candidate, dataset.Hyperparameters, error) {
	return selectBest(trainer, sequences, settings, zap.NewNop())
}

func selectBest(trainer Trainer, sequences *dataset.Sequences, settings []dataset.Setting, logger *zap.Logger) (*Candidate, dataset.Hyperparameters, error) {
	if len(settings) == 0 {
		return nil, dataset.Hyperparameters{}, errors.New("hyperparameter grid is empty")
	}

	var best *Candidate
	var hyperparameters dataset.Hyperparameters
	for j, setting := range settings {
		candidate, err := trainer.Train(sequences, setting)
		if err != nil {
			return nil, dataset.Hyperparameters{}, errors.Wrapf(err, "training setting %d (%s)", j, setting)
		}
		if candidate == nil {
			return nil, dataset.Hyperparameters{}, errors.Errorf("training setting %d (%s) returned no candidate", j, setting)
		}

		adopted := j == 0 || candidate.Loss() < best.Loss()
		logger.Info("candidate trained",
			zap.Int("index", j),
			zap.Stringer("setting", setting),
			zap.Float64("min_loss", candidate.Loss()),
			zap.Int("epochs", candidate.Epochs()),
			zap.Bool("adopted", adopted))

		if adopted {
			best = candidate
			hyperparameters = candidate.Hyperparameters()
		}
	}
	return best, hyperparameters, nil
}
