// Package selection implements the grid search that picks a convolutional
// model for a master dataset.
//
// A Selector scales the master series, sequences both splits, trains one
// candidate per grid setting and keeps the candidate with the lowest minimum
// training loss. The winner's model, scaler and hyperparameters are handed to
// an ArtefactWriter and its estimates to an EstimateWriter.
//
// # Basic Usage
//
//	selector, err := selection.New(args, selection.Collaborators{
//	    Scaler:    scaling.New(args, logger),
//	    Sequencer: sequencing.New(args),
//	    Trainer:   selection.NewConvTrainer(args, logger),
//	    Artefacts: artefacts.New(fs, args, logger),
//	    Estimates: estimates.New(fs, args, logger),
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fragment, err := selector.Exc(master)
//
// # Grid Search
//
// The grid is the cartesian product of modelling.batch_size,
// modelling.filters and modelling.activation, iterated with batch size
// outermost. The first candidate is adopted outright and a later one replaces
// it only when its minimum loss is strictly lower, so ties keep the earlier
// setting:
//
//	best, hyperparameters, err := selection.Select(trainer, sequences, selection.Grid(args.Modelling))
//	fmt.Printf("%s after %d epochs\n", best.Setting, hyperparameters.LHistory)
package selection
