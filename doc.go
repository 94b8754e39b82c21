// Package convselect selects a convolutional regression model for a time
// series by grid search.
//
// A run scales a series, cuts it into supervised windows, trains one small
// Conv1D network per hyperparameter setting and keeps the network with the
// lowest training loss. The winner is stored with its scaler and
// hyperparameters, and its estimates of both splits are written with error
// metrics and residual diagnostics.
//
// # Quick Start
//
// Run the command line tool with a configuration and a CSV file:
//
//	convselect --config configs/example.yaml --data sales.csv --output warehouse
//
// or drive a selection from Go:
//
//	args, _ := config.Load("configs/example.yaml")
//	selector, _ := selection.New(args, selection.Collaborators{
//	    Scaler:    scaling.New(args, logger),
//	    Sequencer: sequencing.New(args),
//	    Trainer:   selection.NewConvTrainer(args, logger),
//	    Artefacts: artefacts.New(fs, args, logger),
//	    Estimates: estimates.New(fs, args, logger),
//	}, logger)
//	fragment, _ := selector.Exc(master)
//
// # Packages
//
//   - config: YAML and HCL run arguments
//   - timeseries: series type and CSV loading
//   - dataset: values passed between stages
//   - scaling: chronological split and min-max scaling
//   - sequencing: supervised windows
//   - network: Conv1D and Dense layers, Adam, early stopping
//   - selection: grid search and the Selector
//   - artefacts: model, scaler and hyperparameter files
//   - estimates: estimates, metrics and plots
//   - stats: residual diagnostics (ACF, Ljung-Box, Durbin-Watson)
//   - logging: zap logger construction
package convselect
