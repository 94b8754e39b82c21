// Package artefacts persists the chosen model with its scaler,
// hyperparameters and run arguments.
package artefacts

import (
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
)

// File names written under the artefact path.
const (
	ModelFile           = "model.json"
	ScalerFile          = "scaler.json"
	HyperparametersFile = "hyperparameters.json"
	ArgumentsFile       = "arguments.yaml"
)

// Writer writes artefacts to a filesystem.
type Writer struct {
	fs     afero.Fs
	args   *config.Arguments
	logger *zap.Logger
}

// New creates a Writer. args is stored alongside every model so a run can be
// reproduced.
func New(fs afero.Fs, args *config.Arguments, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{fs: fs, args: args, logger: logger}
}

// Exc writes the model, scaler, hyperparameters and arguments under path,
// creating it if needed.
func (w *Writer) Exc(model *network.Model, scaler dataset.Scaler, path string, hyperparameters dataset.Hyperparameters) error {
	if model == nil {
		return errors.New("no model to write")
	}
	if err := w.fs.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := w.writeJSON(path, ModelFile, model); err != nil {
		return err
	}
	if err := w.writeJSON(path, ScalerFile, scaler); err != nil {
		return err
	}
	if err := w.writeJSON(path, HyperparametersFile, hyperparameters); err != nil {
		return err
	}

	buf, err := yaml.Marshal(w.args)
	if err != nil {
		return errors.Wrap(err, "encoding arguments")
	}
	return w.write(path, ArgumentsFile, buf)
}

func (w *Writer) writeJSON(dir, name string, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	return w.write(dir, name, buf)
}

func (w *Writer) write(dir, name string, buf []byte) error {
	file := filepath.Join(dir, name)
	if err := afero.WriteFile(w.fs, file, buf, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}
	w.logger.Info("wrote artefact", zap.String("file", file), zap.Int("bytes", len(buf)))
	return nil
}

// LoadModel reads a model written by Exc.
func LoadModel(fs afero.Fs, path string) (*network.Model, error) {
	file := filepath.Join(path, ModelFile)
	f, err := fs.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", file)
	}
	defer f.Close()
	return network.Load(f)
}

// LoadHyperparameters reads hyperparameters written by Exc.
func LoadHyperparameters(fs afero.Fs, path string) (dataset.Hyperparameters, error) {
	var hp dataset.Hyperparameters
	file := filepath.Join(path, HyperparametersFile)
	buf, err := afero.ReadFile(fs, file)
	if err != nil {
		return hp, errors.Wrapf(err, "reading %s", file)
	}
	if err := json.Unmarshal(buf, &hp); err != nil {
		return hp, errors.Wrapf(err, "decoding %s", file)
	}
	return hp, nil
}
