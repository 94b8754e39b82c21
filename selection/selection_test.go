package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/convselect/config"
	"github.com/sartorproj/convselect/dataset"
	"github.com/sartorproj/convselect/network"
	"github.com/sartorproj/convselect/scaling"
	"github.com/sartorproj/convselect/sequencing"
	"github.com/sartorproj/convselect/timeseries"
)

// fakeTrainer returns a candidate whose loss history is taken, in call
// order, from losses.
type fakeTrainer struct {
	losses [][]float64
	calls  []dataset.Setting
	err    error
}

func (f *fakeTrainer) Train(_ *dataset.Sequences, setting dataset.Setting) (*Candidate, error) {
	j := len(f.calls)
	f.calls = append(f.calls, setting)
	if f.err != nil && j == len(f.losses)-1 {
		return nil, f.err
	}

	history := network.NewHistory()
	for epoch, l := range f.losses[j] {
		history.Append(epoch, network.Logs{network.LogLoss: l})
	}
	return &Candidate{Setting: setting, Model: network.NewSequential(1, 1), History: history}, nil
}

// recordingTrainer delegates to another trainer and keeps every candidate.
type recordingTrainer struct {
	Trainer
	candidates []*Candidate
}

func (r *recordingTrainer) Train(sequences *dataset.Sequences, setting dataset.Setting) (*Candidate, error) {
	candidate, err := r.Trainer.Train(sequences, setting)
	if candidate != nil {
		r.candidates = append(r.candidates, candidate)
	}
	return candidate, err
}

// emptyTrainer returns neither a candidate nor an error.
type emptyTrainer struct{}

func (emptyTrainer) Train(*dataset.Sequences, dataset.Setting) (*Candidate, error) {
	return nil, nil
}

func settings(n int) []dataset.Setting {
	out := make([]dataset.Setting, n)
	for i := range out {
		out[i] = dataset.Setting{BatchSize: 8, Filters: i + 1, Activation: "relu"}
	}
	return out
}

func TestGridOrder(t *testing.T) {
	m := &config.Modelling{
		BatchSize:  []int{16, 32},
		Filters:    []int{8, 16},
		Activation: []string{"relu", "tanh"},
	}

	want := []dataset.Setting{
		{BatchSize: 16, Filters: 8, Activation: "relu"},
		{BatchSize: 16, Filters: 8, Activation: "tanh"},
		{BatchSize: 16, Filters: 16, Activation: "relu"},
		{BatchSize: 16, Filters: 16, Activation: "tanh"},
		{BatchSize: 32, Filters: 8, Activation: "relu"},
		{BatchSize: 32, Filters: 8, Activation: "tanh"},
		{BatchSize: 32, Filters: 16, Activation: "relu"},
		{BatchSize: 32, Filters: 16, Activation: "tanh"},
	}
	assert.Equal(t, want, Grid(m))
}

func TestGridTwoCandidates(t *testing.T) {
	m := &config.Modelling{BatchSize: []int{16}, Filters: []int{8, 16}, Activation: []string{"relu"}}
	grid := Grid(m)
	require.Len(t, grid, 2)
	assert.Equal(t, 8, grid[0].Filters)
	assert.Equal(t, 16, grid[1].Filters)
}

func TestSelectKeepsLowestMinimum(t *testing.T) {
	trainer := &fakeTrainer{losses: [][]float64{
		{0.9, 0.5, 0.6},
		{0.8, 0.3},
		{0.7, 0.4, 0.35, 0.31},
	}}

	best, hp, err := Select(trainer, nil, settings(3))
	require.NoError(t, err)
	assert.Equal(t, 2, best.Filters)
	assert.Equal(t, 0.3, best.Loss())
	assert.Equal(t, dataset.Hyperparameters{Filters: 2, BatchSize: 8, Activation: "relu", LHistory: 2}, hp)
	assert.Len(t, trainer.calls, 3)
}

func TestSelectTiesKeepFirst(t *testing.T) {
	trainer := &fakeTrainer{losses: [][]float64{
		{0.5, 0.2},
		{0.2, 0.3, 0.4},
		{0.2},
	}}

	best, hp, err := Select(trainer, nil, settings(3))
	require.NoError(t, err)
	assert.Equal(t, 1, best.Filters)
	assert.Equal(t, 2, hp.LHistory)
}

func TestSelectSinglePoint(t *testing.T) {
	// A non-finite minimum is still adopted when it is the only candidate.
	trainer := &fakeTrainer{losses: [][]float64{{}}}

	best, hp, err := Select(trainer, nil, settings(1))
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 1, hp.Filters)
	assert.Equal(t, 0, hp.LHistory)
}

func TestSelectLHistoryFollowsWinner(t *testing.T) {
	trainer := &fakeTrainer{losses: [][]float64{
		{0.9, 0.8, 0.7, 0.6, 0.5},
		{0.4, 0.45, 0.5},
	}}

	best, hp, err := Select(trainer, nil, settings(2))
	require.NoError(t, err)
	assert.Equal(t, best.Epochs(), hp.LHistory)
	assert.Equal(t, 3, hp.LHistory)
}

func TestSelectEmptyGrid(t *testing.T) {
	_, _, err := Select(&fakeTrainer{}, nil, nil)
	assert.Error(t, err)
}

func TestSelectPropagatesTrainingErrors(t *testing.T) {
	boom := errors.New("boom")
	trainer := &fakeTrainer{losses: [][]float64{{0.1}, {0.2}}, err: boom}

	_, _, err := Select(trainer, nil, settings(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training setting 1")
	assert.Contains(t, err.Error(), "boom")
}

func TestCandidateWithoutHistory(t *testing.T) {
	c := &Candidate{}
	assert.Equal(t, 0, c.Epochs())
	assert.True(t, c.Loss() > 1e308)
}

func TestPathFragment(t *testing.T) {
	cases := map[string]string{
		"/a/b/c/d":             "c/d",
		"/data/out/2024/run17": "2024/run17",
		"a/b":                  "a/b",
		"run":                  "run",
		"/run":                 "/run",
	}
	for in, want := range cases {
		assert.Equal(t, want, PathFragment(in), in)
	}
}

type recordingArtefacts struct {
	model           *network.Model
	path            string
	hyperparameters dataset.Hyperparameters
	err             error
}

func (r *recordingArtefacts) Exc(model *network.Model, _ dataset.Scaler, path string, hp dataset.Hyperparameters) error {
	r.model, r.path, r.hyperparameters = model, path, hp
	return r.err
}

type recordingEstimates struct {
	model     *network.Model
	sequences *dataset.Sequences
	calls     int
}

func (r *recordingEstimates) Exc(model *network.Model, sequences *dataset.Sequences, _ *dataset.Intermediary, _ *dataset.Master) error {
	r.model, r.sequences = model, sequences
	r.calls++
	return nil
}

func testArguments() *config.Arguments {
	args := config.Default()
	args.Seed = 3
	args.Sequencing.Window = 4
	args.Modelling.Epochs = 5
	args.Modelling.BatchSize = []int{8}
	args.Modelling.Filters = []int{2, 3}
	args.Modelling.Activation = []string{"relu"}
	return args
}

func testMaster(t *testing.T) *dataset.Master {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i%12) + float64(i)/10
	}
	master, err := dataset.NewMaster("demand", "/data/out/2024/run17", timeseries.New(values))
	require.NoError(t, err)
	return master
}

func TestSelectorExc(t *testing.T) {
	args := testArguments()
	logger := zaptest.NewLogger(t)
	artefacts := &recordingArtefacts{}
	estimates := &recordingEstimates{}
	trainer := &recordingTrainer{Trainer: NewConvTrainer(args, logger)}

	selector, err := New(args, Collaborators{
		Scaler:    scaling.New(args, logger),
		Sequencer: sequencing.New(args),
		Trainer:   trainer,
		Artefacts: artefacts,
		Estimates: estimates,
	}, logger)
	require.NoError(t, err)

	fragment, err := selector.Exc(testMaster(t))
	require.NoError(t, err)
	assert.Equal(t, "2024/run17", fragment)

	require.NotNil(t, artefacts.model)
	assert.Same(t, artefacts.model, estimates.model)
	assert.Equal(t, "/data/out/2024/run17", artefacts.path)
	assert.Equal(t, 1, estimates.calls)

	require.Len(t, trainer.candidates, 2)
	winner := trainer.candidates[0]
	if trainer.candidates[1].Loss() < winner.Loss() {
		winner = trainer.candidates[1]
	}
	assert.Same(t, winner.Model, artefacts.model)
	assert.Equal(t, winner.Filters, artefacts.hyperparameters.Filters)
	assert.Equal(t, artefacts.model.History().Len(), artefacts.hyperparameters.LHistory)

	ts, _ := estimates.sequences.XTr.Dims()
	assert.Equal(t, 4, estimates.sequences.Timesteps)
	assert.Equal(t, 48-4-1+1, ts)
}

func TestSelectorRejectsUnknownActivation(t *testing.T) {
	args := testArguments()
	args.Modelling.Activation = []string{"relu", "mish"}
	trainer := &fakeTrainer{}

	selector, err := New(args, Collaborators{
		Scaler:    scaling.New(args, nil),
		Sequencer: sequencing.New(args),
		Trainer:   trainer,
		Artefacts: &recordingArtefacts{},
		Estimates: &recordingEstimates{},
	}, nil)
	require.NoError(t, err)

	_, err = selector.Exc(testMaster(t))
	require.Error(t, err)
	assert.Empty(t, trainer.calls)
}

func TestSelectorPropagatesWriterErrors(t *testing.T) {
	args := testArguments()
	estimates := &recordingEstimates{}

	selector, err := New(args, Collaborators{
		Scaler:    scaling.New(args, nil),
		Sequencer: sequencing.New(args),
		Trainer:   &fakeTrainer{losses: [][]float64{{0.3}, {0.2}}},
		Artefacts: &recordingArtefacts{err: errors.New("disk full")},
		Estimates: estimates,
	}, nil)
	require.NoError(t, err)

	_, err = selector.Exc(testMaster(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, estimates.calls)
}

func TestNewChecksCollaborators(t *testing.T) {
	args := testArguments()
	_, err := New(args, Collaborators{}, nil)
	assert.Error(t, err)

	_, err = New(nil, Collaborators{}, nil)
	assert.Error(t, err)

	bad := testArguments()
	bad.Modelling.Filters = nil
	_, err = New(bad, Collaborators{
		Scaler:    scaling.New(bad, nil),
		Sequencer: sequencing.New(bad),
		Trainer:   &fakeTrainer{},
		Artefacts: &recordingArtefacts{},
		Estimates: &recordingEstimates{},
	}, nil)
	assert.Error(t, err)
}

func TestConvTrainer(t *testing.T) {
	args := testArguments()
	args.Modelling.Patience = 1

	x := mat.NewDense(20, 4, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		for j := 0; j < 4; j++ {
			x.Set(i, j, float64((i+j)%5)/5)
		}
		y.Set(i, 0, float64((i+4)%5)/5)
	}
	seq := &dataset.Sequences{XTr: x, YTr: y, XTe: x, YTe: y, Timesteps: 4, Channels: 1}

	trainer := NewConvTrainer(args, zaptest.NewLogger(t))
	setting := dataset.Setting{BatchSize: 4, Filters: 3, Activation: "tanh"}

	first, err := trainer.Train(seq, setting)
	require.NoError(t, err)
	assert.Equal(t, setting, first.Setting)
	assert.Equal(t, 1, first.Model.OutputSteps())
	assert.True(t, first.Epochs() >= 1 && first.Epochs() <= args.Modelling.Epochs)

	again, err := trainer.Train(seq, setting)
	require.NoError(t, err)
	assert.Equal(t, first.History.Loss(), again.History.Loss(), "same seed, same run")

	kinds := []string{}
	for _, l := range first.Model.Layers() {
		kinds = append(kinds, l.Kind())
	}
	assert.Equal(t, []string{"conv1d", "dense", "dense"}, kinds)
}

func TestSelectRejectsMissingCandidate(t *testing.T) {
	_, _, err := Select(emptyTrainer{}, nil, settings(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned no candidate")
}

func TestSelectorRejectsNilMaster(t *testing.T) {
	args := testArguments()
	trainer := &fakeTrainer{}
	selector, err := New(args, Collaborators{
		Scaler:    scaling.New(args, nil),
		Sequencer: sequencing.New(args),
		Trainer:   trainer,
		Artefacts: &recordingArtefacts{},
		Estimates: &recordingEstimates{},
	}, nil)
	require.NoError(t, err)

	_, err = selector.Exc(nil)
	require.Error(t, err)
	assert.Empty(t, trainer.calls)
}
