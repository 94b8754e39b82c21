// Command convselect trains a grid of convolutional models on one series,
// keeps the best and writes its artefacts and estimates.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sartorproj/convselect/artefacts"
	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/estimates"
	"github.com/sartorproj/convselect/logging"
	"github.com/sartorproj/convselect/scaling"
	"github.com/sartorproj/convselect/selection"
	"github.com/sartorproj/convselect/sequencing"
	"github.com/sartorproj/convselect/timeseries"
)

type options struct {
	Config    string `arg:"--config,required" help:"YAML or HCL run configuration"`
	Data      string `arg:"--data,required" help:"CSV file holding the series"`
	Output    string `arg:"--output" help:"directory the run directory is created in"`
	Name      string `arg:"--name" help:"run name; defaults to the data file's base name"`
	LogLevel  string `arg:"--log-level" help:"debug, info, warn or error"`
	LogFormat string `arg:"--log-format" help:"json or console"`
}

func main() {
	opts := options{
		Output:    "warehouse",
		LogLevel:  "info",
		LogFormat: logging.FormatConsole,
	}
	arg.MustParse(&opts)

	logger, err := newLogger(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	fragment, err := run(opts, afero.NewOsFs(), logger)
	if err != nil {
		logger.Error("selection failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	fmt.Println(fragment)
}

// newLogger sends every log entry to stderr so that stdout carries only the
// path fragment.
func newLogger(opts options) (*zap.Logger, error) {
	return logging.New(opts.LogLevel, opts.LogFormat, os.Stderr)
}

func run(opts options, fs afero.Fs, logger *zap.Logger) (string, error) {
	args, err := config.Load(opts.Config)
	if err != nil {
		return "", err
	}

	csv := timeseries.DefaultCSVOptions()
	csv.ValueColumn = args.Data.ValueColumn
	csv.DateColumn = args.Data.DateColumn
	csv.IDColumn = args.Data.IDColumn
	csv.IDFilter = args.Data.IDFilter
	series, err := timeseries.LoadCSV(opts.Data, csv)
	if err != nil {
		return "", err
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(opts.Data), filepath.Ext(opts.Data))
	}
	master, err := dataset.NewMaster(name, filepath.ToSlash(filepath.Join(opts.Output, name)), series)
	if err != nil {
		return "", err
	}
	logger.Info("loaded series",
		zap.String("file", opts.Data),
		zap.Int("observations", series.Len()),
		zap.String("column", series.Name))
	if series.Dropped > 0 {
		logger.Warn("dropped rows with unparseable values",
			zap.String("file", opts.Data),
			zap.Int("dropped", series.Dropped))
	}
	if series.Undated > 0 {
		logger.Warn("unparseable dates, using synthetic timestamps",
			zap.String("file", opts.Data),
			zap.Int("undated", series.Undated))
	}

	selector, err := selection.New(args, selection.Collaborators{
		Scaler:    scaling.New(args, logger),
		Sequencer: sequencing.New(args),
		Trainer:   selection.NewConvTrainer(args, logger),
		Artefacts: artefacts.New(fs, args, logger),
		Estimates: estimates.New(fs, args, logger),
	}, logger)
	if err != nil {
		return "", err
	}
	return selector.Exc(master)
}
