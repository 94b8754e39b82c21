package estimates

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
	"github.com/sartorproj/convselect/sequencing"
	"github.com/sartorproj/convselect/timeseries"
)

// File names written under the master path.
const (
	EstimatesFile = "estimates.csv"
	MetricsFile   = "metrics.json"
	PlotFile      = "estimates.png"
)

// Split names used in the estimates and metrics.
const (
	Training = "training"
	Testing  = "testing"
)

// Record is one row of the estimates file, in the original units.
type Record struct {
	Split       string  `csv:"split"`
	Timestamp   string  `csv:"timestamp"`
	Observation float64 `csv:"observation"`
	Estimate    float64 `csv:"estimate"`
	Residual    float64 `csv:"residual"`
}

// Writer predicts both splits with a model and writes the estimates and
// their diagnostics.
type Writer struct {
	fs        afero.Fs
	sequencer *sequencing.Sequencing
	lags      int
	plot      bool
	logger    *zap.Logger
}

// New creates a Writer from the sequencing and estimates arguments.
func New(fs afero.Fs, args *config.Arguments, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		fs:        fs,
		sequencer: sequencing.New(args),
		lags:      args.Estimates.Lags,
		plot:      args.Estimates.Plot,
		logger:    logger,
	}
}

// Exc writes estimates.csv and metrics.json, and estimates.png when plotting
// is enabled, under master.Path.
func (w *Writer) Exc(model *network.Model, sequences *dataset.Sequences, intermediary *dataset.Intermediary, master *dataset.Master) error {
	if model == nil {
		return errors.New("no model to estimate with")
	}

	training, err := w.Records(model, Training, sequences.XTr, sequences.YTr, intermediary.Training, intermediary.Scaler)
	if err != nil {
		return err
	}
	testing, err := w.Records(model, Testing, sequences.XTe, sequences.YTe, intermediary.Testing, intermediary.Scaler)
	if err != nil {
		return err
	}

	if err := w.fs.MkdirAll(master.Path, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", master.Path)
	}

	records := append(append([]*Record{}, training...), testing...)
	if err := w.writeCSV(master.Path, records); err != nil {
		return err
	}

	metrics := map[string]*Metrics{
		Training: Evaluate(training, w.lags),
		Testing:  Evaluate(testing, w.lags),
	}
	if err := w.writeMetrics(master.Path, metrics); err != nil {
		return err
	}
	for split, m := range metrics {
		w.logger.Info("estimates",
			zap.String("split", split),
			zap.Int("samples", m.Samples),
			zap.Float64("rmse", m.RMSE),
			zap.Float64("mae", m.MAE))
	}

	if w.plot {
		return w.writePlot(master.Path, master.Name, training, testing)
	}
	return nil
}

// Records predicts one split and maps observations and estimates back to
// the original units. blob is the scaled split the windows were cut from;
// it supplies the timestamp of each target.
func (w *Writer) Records(model *network.Model, split string, x, y *mat.Dense, blob *timeseries.Series, scaler dataset.Scaler) ([]*Record, error) {
	pred, err := model.Predict(x)
	if err != nil {
		return nil, errors.Wrapf(err, "predicting %s split", split)
	}

	samples, _ := y.Dims()
	steps := model.OutputSteps()
	observed := make([]float64, samples)
	estimated := make([]float64, samples)
	for i := 0; i < samples; i++ {
		observed[i] = y.At(i, 0)
		// With several output positions the last one has seen the most
		// recent inputs.
		estimated[i] = pred.At(i*steps+steps-1, 0)
	}
	observed = scaler.InverseTransform(observed)
	estimated = scaler.InverseTransform(estimated)

	records := make([]*Record, samples)
	for i := range records {
		records[i] = &Record{
			Split:       split,
			Timestamp:   formatTimestamp(blob.TimestampAt(w.sequencer.TargetIndex(i))),
			Observation: observed[i],
			Estimate:    estimated[i],
			Residual:    observed[i] - estimated[i],
		}
	}
	return records, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func (w *Writer) writeCSV(dir string, records []*Record) error {
	file := filepath.Join(dir, EstimatesFile)
	f, err := w.fs.Create(file)
	if err != nil {
		return errors.Wrapf(err, "creating %s", file)
	}

	if err := gocsv.Marshal(&records, f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", file)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", file)
	}
	w.logger.Info("wrote estimates", zap.String("file", file), zap.Int("records", len(records)))
	return nil
}

func (w *Writer) writeMetrics(dir string, metrics map[string]*Metrics) error {
	file := filepath.Join(dir, MetricsFile)
	buf, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding metrics")
	}
	if err := afero.WriteFile(w.fs, file, buf, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}
	w.logger.Info("wrote metrics", zap.String("file", file))
	return nil
}
