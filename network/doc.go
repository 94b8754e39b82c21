// Package network implements the small convolutional regressor trained for
// every grid setting.
//
// A Model is a sequential stack of Conv1D and Dense layers over windows of
// timesteps×channels values, trained with Adam on the mean squared error.
// Activations travel between layers as (samples·steps)×width gonum matrices.
//
// # Basic Usage
//
//	model := network.NewSequential(12, 1)
//	model.Add(network.NewConv1D(16, 12, "relu"))
//	model.Add(network.NewDense(16, "relu"))
//	model.Add(network.NewDense(1, ""))
//
//	rng := rand.New(rand.NewSource(seed))
//	if err := model.Compile(network.NewAdam(0.001), rng); err != nil {
//	    log.Fatal(err)
//	}
//
//	stop := network.NewEarlyStopping(network.LogLoss, 0, 0, false)
//	history, err := model.Fit(x, y, network.FitOptions{
//	    Epochs:    100,
//	    BatchSize: 32,
//	    Shuffle:   true,
//	    Rand:      rng,
//	    Callbacks: []network.Callback{stop},
//	})
//
// # Early Stopping
//
// EarlyStopping counts the epochs since the monitored metric last dropped by
// more than MinDelta and stops once that count reaches Patience. Training
// always runs at least two epochs when the callback is attached. With
// RestoreBestWeights the weights of the best epoch are put back at the end;
// otherwise the model keeps its final weights.
//
// # Persistence
//
// Models encode to JSON with json.Marshal and decode with Load. A loaded
// model predicts immediately but must be compiled again to train.
package network
