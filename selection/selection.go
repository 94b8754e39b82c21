package selection

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
	"github.com/sartorproj/convselect/timeseries"
)

// Scaler splits and scales a master dataset.
type Scaler interface {
	Exc(master *dataset.Master) (*dataset.Intermediary, error)
}

// Sequencer turns one split into supervised windows.
type Sequencer interface {
	Exc(blob *timeseries.Series) (*dataset.Windows, error)
}

// Trainer builds, compiles and fits one candidate.
type Trainer interface {
	Train(sequences *dataset.Sequences, setting dataset.Setting) (*Candidate, error)
}

// ArtefactWriter persists the chosen model with its scaler and
// hyperparameters under path.
type ArtefactWriter interface {
	Exc(model *network.Model, scaler dataset.Scaler, path string, hyperparameters dataset.Hyperparameters) error
}

// EstimateWriter computes and persists the chosen model's estimates.
type EstimateWriter interface {
	Exc(model *network.Model, sequences *dataset.Sequences, intermediary *dataset.Intermediary, master *dataset.Master) error
}

// Collaborators are the stages a Selector delegates to.
type Collaborators struct {
	Scaler    Scaler
	Sequencer Sequencer
	Trainer   Trainer
	Artefacts ArtefactWriter
	Estimates EstimateWriter
}

func (c Collaborators) check() error {
	switch {
	case c.Scaler == nil:
		return errors.New("selector needs a scaler")
	case c.Sequencer == nil:
		return errors.New("selector needs a sequencer")
	case c.Trainer == nil:
		return errors.New("selector needs a trainer")
	case c.Artefacts == nil:
		return errors.New("selector needs an artefact writer")
	case c.Estimates == nil:
		return errors.New("selector needs an estimate writer")
	}
	return nil
}

// Selector runs the grid search for one master dataset.
type Selector struct {
	args   *config.Arguments
	collab Collaborators
	logger *zap.Logger
}

// New creates a Selector. The arguments must hold a valid modelling grid.
func New(args *config.Arguments, collab Collaborators, logger *zap.Logger) (*Selector, error) {
	if args == nil {
		return nil, errors.New("selector needs arguments")
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if err := collab.check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{args: args, collab: collab, logger: logger}, nil
}

// Exc scales and sequences the master series, trains a candidate per grid
// setting, keeps the best, writes its artefacts and estimates, and returns
// the last two segments of the master path.
func (s *Selector) Exc(master *dataset.Master) (string, error) {
	if master == nil {
		return "", errors.New("no master series to select for")
	}
	logger := s.logger.With(zap.String("master", master.Name), zap.String("path", master.Path))

	intermediary, err := s.collab.Scaler.Exc(master)
	if err != nil {
		return "", errors.Wrap(err, "scaling")
	}

	sequences, err := s.sequences(intermediary)
	if err != nil {
		return "", err
	}

	settings := Grid(s.args.Modelling)
	for _, setting := range settings {
		if _, err := network.ActivationByName(setting.Activation); err != nil {
			return "", errors.Wrapf(err, "setting %s", setting)
		}
	}
	logger.Info("selection started",
		zap.Int("settings", len(settings)),
		zap.Int("training_samples", rows(sequences.XTr)),
		zap.Int("testing_samples", rows(sequences.XTe)),
		zap.Int("timesteps", sequences.Timesteps))

	best, hyperparameters, err := selectBest(s.collab.Trainer, sequences, settings, logger)
	if err != nil {
		return "", err
	}
	logger.Info("selection finished",
		zap.Stringer("setting", best.Setting),
		zap.Float64("min_loss", best.Loss()),
		zap.Int("l_history", hyperparameters.LHistory))

	if err := s.collab.Artefacts.Exc(best.Model, intermediary.Scaler, master.Path, hyperparameters); err != nil {
		return "", errors.Wrap(err, "writing artefacts")
	}
	if err := s.collab.Estimates.Exc(best.Model, sequences, intermediary, master); err != nil {
		return "", errors.Wrap(err, "writing estimates")
	}

	return PathFragment(master.Path), nil
}

func (s *Selector) sequences(intermediary *dataset.Intermediary) (*dataset.Sequences, error) {
	training, err := s.collab.Sequencer.Exc(intermediary.Training)
	if err != nil {
		return nil, errors.Wrap(err, "sequencing training split")
	}
	testing, err := s.collab.Sequencer.Exc(intermediary.Testing)
	if err != nil {
		return nil, errors.Wrap(err, "sequencing testing split")
	}
	return dataset.NewSequences(training, testing)
}

func rows(x interface{ Dims() (int, int) }) int {
	r, _ := x.Dims()
	return r
}

// PathFragment returns the last two "/"-separated segments of path, or path
// itself when it has fewer.
func PathFragment(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
