// Package config loads the arguments that drive a selection run.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Monitor names accepted by early stopping.
const (
	MonitorLoss = "loss"
	MonitorRMSE = "root_mean_squared_error"
)

// Arguments is the full run configuration.
type Arguments struct {
	Seed       int64       `yaml:"seed" hcl:"seed,optional"`
	Data       *Data       `yaml:"data" hcl:"data,block"`
	Sequencing *Sequencing `yaml:"sequencing" hcl:"sequencing,block"`
	Modelling  *Modelling  `yaml:"modelling" hcl:"modelling,block"`
	Estimates  *Estimates  `yaml:"estimates" hcl:"estimates,block"`
}

// Data describes how the raw series is read and split.
type Data struct {
	TrainingFraction float64 `yaml:"training_fraction" hcl:"training_fraction,optional"`
	ValueColumn      string  `yaml:"value_column" hcl:"value_column,optional"`
	DateColumn       string  `yaml:"date_column" hcl:"date_column,optional"`
	IDColumn         string  `yaml:"id_column" hcl:"id_column,optional"`
	IDFilter         string  `yaml:"id_filter" hcl:"id_filter,optional"`
}

// Sequencing describes the supervised windows.
type Sequencing struct {
	Window  int `yaml:"window" hcl:"window,optional"`
	Horizon int `yaml:"horizon" hcl:"horizon,optional"`
}

// Modelling holds the training settings and the hyperparameter grid.
type Modelling struct {
	Patience           int      `yaml:"patience" hcl:"patience,optional"`
	Epochs             int      `yaml:"epochs" hcl:"epochs,optional"`
	Monitor            string   `yaml:"monitor" hcl:"monitor,optional"`
	MinDelta           float64  `yaml:"min_delta" hcl:"min_delta,optional"`
	BatchSize          []int    `yaml:"batch_size" hcl:"batch_size,optional"`
	Filters            []int    `yaml:"filters" hcl:"filters,optional"`
	Activation         []string `yaml:"activation" hcl:"activation,optional"`
	RestoreBestWeights bool     `yaml:"restore_best_weights" hcl:"restore_best_weights,optional"`
	LearningRate       float64  `yaml:"learning_rate" hcl:"learning_rate,optional"`
}

// Estimates controls the evaluation artefacts.
type Estimates struct {
	Lags int  `yaml:"lags" hcl:"lags,optional"`
	Plot bool `yaml:"plot" hcl:"plot,optional"`
}

// Default returns arguments with every default filled in and an empty grid.
func Default() *Arguments {
	args := &Arguments{}
	args.setDefaults()
	return args
}

// setDefaults replaces zero values with defaults. Fields whose zero value is
// meaningful (seed, patience, min_delta) default to zero.
func (a *Arguments) setDefaults() {
	if a.Data == nil {
		a.Data = &Data{}
	}
	if a.Data.TrainingFraction == 0 {
		a.Data.TrainingFraction = 0.8
	}
	if a.Data.ValueColumn == "" {
		a.Data.ValueColumn = "y"
	}

	if a.Sequencing == nil {
		a.Sequencing = &Sequencing{}
	}
	if a.Sequencing.Window == 0 {
		a.Sequencing.Window = 12
	}
	if a.Sequencing.Horizon == 0 {
		a.Sequencing.Horizon = 1
	}

	if a.Modelling == nil {
		a.Modelling = &Modelling{}
	}
	if a.Modelling.Epochs == 0 {
		a.Modelling.Epochs = 100
	}
	if a.Modelling.Monitor == "" {
		a.Modelling.Monitor = MonitorLoss
	}
	if a.Modelling.LearningRate == 0 {
		a.Modelling.LearningRate = 0.001
	}

	if a.Estimates == nil {
		a.Estimates = &Estimates{}
	}
	if a.Estimates.Lags == 0 {
		a.Estimates.Lags = 10
	}
}

// Load reads arguments from a YAML file, or an HCL file when the extension
// is .hcl, fills in defaults and validates the result.
func Load(path string) (*Arguments, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	var args *Arguments
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		args, err = ParseHCL(src, path)
	} else {
		args, err = ParseYAML(src)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return args, nil
}

// ParseYAML decodes, defaults and validates YAML arguments.
func ParseYAML(src []byte) (*Arguments, error) {
	args := &Arguments{}
	if err := yaml.UnmarshalStrict(src, args); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	return finish(args)
}

// ParseHCL decodes, defaults and validates HCL arguments. filename is only
// used in diagnostics.
func ParseHCL(src []byte, filename string) (*Arguments, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, "parsing hcl")
	}

	args := &Arguments{}
	if diags := gohcl.DecodeBody(file.Body, nil, args); diags.HasErrors() {
		return nil, errors.Wrap(diags, "decoding hcl")
	}
	return finish(args)
}

func finish(args *Arguments) (*Arguments, error) {
	args.setDefaults()
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

// Validate checks the arguments for values no run can use.
func (a *Arguments) Validate() error {
	if a.Data == nil || a.Sequencing == nil || a.Modelling == nil || a.Estimates == nil {
		return errors.New("arguments are missing a section")
	}

	if f := a.Data.TrainingFraction; f <= 0 || f >= 1 {
		return errors.Errorf("data.training_fraction must lie in (0, 1), got %g", f)
	}
	if a.Sequencing.Window < 1 {
		return errors.Errorf("sequencing.window must be positive, got %d", a.Sequencing.Window)
	}
	if a.Sequencing.Horizon < 1 {
		return errors.Errorf("sequencing.horizon must be positive, got %d", a.Sequencing.Horizon)
	}
	if a.Estimates.Lags < 1 {
		return errors.Errorf("estimates.lags must be positive, got %d", a.Estimates.Lags)
	}

	return a.Modelling.Validate()
}

// Validate checks the training settings and the grid lists.
func (m *Modelling) Validate() error {
	if m.Epochs < 1 {
		return errors.Errorf("modelling.epochs must be positive, got %d", m.Epochs)
	}
	if m.Patience < 0 {
		return errors.Errorf("modelling.patience must not be negative, got %d", m.Patience)
	}
	if m.MinDelta < 0 {
		return errors.Errorf("modelling.min_delta must not be negative, got %g", m.MinDelta)
	}
	if m.LearningRate <= 0 {
		return errors.Errorf("modelling.learning_rate must be positive, got %g", m.LearningRate)
	}
	switch m.Monitor {
	case MonitorLoss, MonitorRMSE:
	default:
		return errors.Errorf("modelling.monitor %q is not tracked during training", m.Monitor)
	}

	if len(m.BatchSize) == 0 {
		return errors.New("modelling.batch_size must not be empty")
	}
	if len(m.Filters) == 0 {
		return errors.New("modelling.filters must not be empty")
	}
	if len(m.Activation) == 0 {
		return errors.New("modelling.activation must not be empty")
	}
	for _, b := range m.BatchSize {
		if b < 1 {
			return errors.Errorf("modelling.batch_size entries must be positive, got %d", b)
		}
	}
	for _, f := range m.Filters {
		if f < 1 {
			return errors.Errorf("modelling.filters entries must be positive, got %d", f)
		}
	}
	return nil
}
