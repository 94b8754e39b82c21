package selection

import (
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
)

// ConvTrainer builds and fits the convolutional regressor for one setting.
type ConvTrainer struct {
	modelling *config.Modelling
	seed      int64
	logger    *zap.Logger
}

// NewConvTrainer creates a trainer from the modelling arguments. Every
// candidate draws its weights and batch order from a source seeded with
// args.Seed, so a candidate trains the same way wherever it sits in the grid.
func NewConvTrainer(args *config.Arguments, logger *zap.Logger) *ConvTrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConvTrainer{modelling: args.Modelling, seed: args.Seed, logger: logger}
}

// Build returns the uncompiled topology for a setting: a convolution whose
// kernel spans the whole window, a dense layer as wide as the filters and a
// linear output.
func Build(timesteps, channels int, setting dataset.Setting) *network.Model {
	model := network.NewSequential(timesteps, channels)
	model.Add(network.NewConv1D(setting.Filters, timesteps, setting.Activation))
	model.Add(network.NewDense(setting.Filters, setting.Activation))
	model.Add(network.NewDense(1, ""))
	return model
}

// Train implements Trainer.
func (t *ConvTrainer) Train(sequences *dataset.Sequences, setting dataset.Setting) (*Candidate, error) {
	rng := rand.New(rand.NewSource(t.seed))

	model := Build(sequences.Timesteps, sequences.Channels, setting)
	if err := model.Compile(network.NewAdam(t.modelling.LearningRate), rng); err != nil {
		return nil, errors.Wrap(err, "compiling model")
	}

	stopping := network.NewEarlyStopping(
		t.modelling.Monitor, t.modelling.MinDelta, t.modelling.Patience, t.modelling.RestoreBestWeights)

	history, err := model.Fit(sequences.XTr, sequences.YTr, network.FitOptions{
		Epochs:    t.modelling.Epochs,
		BatchSize: setting.BatchSize,
		Shuffle:   true,
		Rand:      rng,
		Callbacks: []network.Callback{stopping},
		Logger:    t.logger.With(zap.Stringer("setting", setting)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fitting model")
	}

	if epoch := stopping.StoppedEpoch(); epoch > 0 {
		t.logger.Debug("early stopping", zap.Stringer("setting", setting), zap.Int("epoch", epoch+1))
	}
	return &Candidate{Setting: setting, Model: model, History: history}, nil
}
