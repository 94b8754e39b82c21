package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
seed: 7
data:
  training_fraction: 0.75
  value_column: demand
sequencing:
  window: 6
modelling:
  patience: 3
  epochs: 40
  monitor: loss
  min_delta: 0.001
  batch_size: [16, 32]
  filters: [8, 16]
  activation: [relu, tanh]
estimates:
  plot: true
`

const hclConfig = `
seed = 7

data {
  training_fraction = 0.75
  value_column      = "demand"
}

sequencing {
  window = 6
}

modelling {
  patience   = 3
  epochs     = 40
  monitor    = "loss"
  min_delta  = 0.001
  batch_size = [16, 32]
  filters    = [8, 16]
  activation = ["relu", "tanh"]
}

estimates {
  plot = true
}
`

func assertParsed(t *testing.T, args *Arguments) {
	t.Helper()

	assert.EqualValues(t, 7, args.Seed)
	assert.Equal(t, 0.75, args.Data.TrainingFraction)
	assert.Equal(t, "demand", args.Data.ValueColumn)
	assert.Equal(t, 6, args.Sequencing.Window)
	assert.Equal(t, 1, args.Sequencing.Horizon)

	m := args.Modelling
	assert.Equal(t, 3, m.Patience)
	assert.Equal(t, 40, m.Epochs)
	assert.Equal(t, MonitorLoss, m.Monitor)
	assert.Equal(t, 0.001, m.MinDelta)
	assert.Equal(t, []int{16, 32}, m.BatchSize)
	assert.Equal(t, []int{8, 16}, m.Filters)
	assert.Equal(t, []string{"relu", "tanh"}, m.Activation)
	assert.False(t, m.RestoreBestWeights)
	assert.Equal(t, 0.001, m.LearningRate)

	assert.Equal(t, 10, args.Estimates.Lags)
	assert.True(t, args.Estimates.Plot)
}

func TestParseYAML(t *testing.T) {
	args, err := ParseYAML([]byte(yamlConfig))
	require.NoError(t, err)
	assertParsed(t, args)
}

func TestParseHCL(t *testing.T) {
	args, err := ParseHCL([]byte(hclConfig), "run.hcl")
	require.NoError(t, err)
	assertParsed(t, args)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), 0o644))
	args, err := Load(yamlPath)
	require.NoError(t, err)
	assertParsed(t, args)

	hclPath := filepath.Join(dir, "run.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(hclConfig), 0o644))
	args, err = Load(hclPath)
	require.NoError(t, err)
	assertParsed(t, args)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	args := Default()

	assert.Equal(t, 0.8, args.Data.TrainingFraction)
	assert.Equal(t, "y", args.Data.ValueColumn)
	assert.Equal(t, 12, args.Sequencing.Window)
	assert.Equal(t, 1, args.Sequencing.Horizon)
	assert.Equal(t, 100, args.Modelling.Epochs)
	assert.Equal(t, MonitorLoss, args.Modelling.Monitor)
	assert.Equal(t, 0, args.Modelling.Patience)
	assert.Equal(t, 10, args.Estimates.Lags)

	// The grid is left to the caller.
	assert.Error(t, args.Validate())
	args.Modelling.BatchSize = []int{16}
	args.Modelling.Filters = []int{8}
	args.Modelling.Activation = []string{"relu"}
	assert.NoError(t, args.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Arguments)
	}{
		{"fraction too high", func(a *Arguments) { a.Data.TrainingFraction = 1 }},
		{"negative window", func(a *Arguments) { a.Sequencing.Window = -1 }},
		{"negative horizon", func(a *Arguments) { a.Sequencing.Horizon = -2 }},
		{"negative patience", func(a *Arguments) { a.Modelling.Patience = -1 }},
		{"negative min delta", func(a *Arguments) { a.Modelling.MinDelta = -0.1 }},
		{"zero epochs", func(a *Arguments) { a.Modelling.Epochs = 0 }},
		{"unknown monitor", func(a *Arguments) { a.Modelling.Monitor = "val_loss" }},
		{"empty batch sizes", func(a *Arguments) { a.Modelling.BatchSize = nil }},
		{"empty filters", func(a *Arguments) { a.Modelling.Filters = nil }},
		{"empty activations", func(a *Arguments) { a.Modelling.Activation = nil }},
		{"zero batch size", func(a *Arguments) { a.Modelling.BatchSize = []int{16, 0} }},
		{"zero filters", func(a *Arguments) { a.Modelling.Filters = []int{0} }},
		{"missing section", func(a *Arguments) { a.Estimates = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseYAML([]byte(yamlConfig))
			require.NoError(t, err)

			tt.mutate(args)
			assert.Error(t, args.Validate())
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := ParseYAML([]byte("modelling: [1, 2"))
	assert.Error(t, err)

	_, err = ParseYAML([]byte("modelling:\n  unknown_key: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseHCL([]byte("modelling {\n  epochs = \"many\"\n}\n"), "bad.hcl")
	assert.Error(t, err)
}

func TestExampleConfigsAgree(t *testing.T) {
	fromYAML, err := Load(filepath.Join("..", "configs", "example.yaml"))
	require.NoError(t, err)
	fromHCL, err := Load(filepath.Join("..", "configs", "example.hcl"))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromHCL)
	assert.Equal(t, []string{"relu", "tanh"}, fromYAML.Modelling.Activation)
	assert.Equal(t, 5, fromYAML.Modelling.Patience)
}
