package network

import (
	"encoding/json"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

type layerConfig struct {
	Kind       string `json:"kind"`
	Filters    int    `json:"filters,omitempty"`
	KernelSize int    `json:"kernel_size,omitempty"`
	Units      int    `json:"units,omitempty"`
	Activation string `json:"activation"`
}

type layerState struct {
	layerConfig
	Weights [][]float64 `json:"weights"`
}

type modelState struct {
	Timesteps int          `json:"timesteps"`
	Channels  int          `json:"channels"`
	Layers    []layerState `json:"layers"`
	History   *History     `json:"history,omitempty"`
}

// MarshalJSON encodes the topology, the weights and the training history.
func (m *Model) MarshalJSON() ([]byte, error) {
	if !m.built {
		return nil, errors.New("cannot encode a model that is not built")
	}

	state := modelState{Timesteps: m.timesteps, Channels: m.channels, History: m.history}
	for _, l := range m.layers {
		ls := layerState{layerConfig: l.config()}
		for _, p := range l.params() {
			ls.Weights = append(ls.Weights, append([]float64(nil), p.value.RawMatrix().Data...))
		}
		state.Layers = append(state.Layers, ls)
	}
	return json.Marshal(state)
}

// Load decodes a model written by MarshalJSON. The model can predict but
// must be compiled again before further training.
func Load(r io.Reader) (*Model, error) {
	var state modelState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, errors.Wrap(err, "decoding model")
	}

	m := NewSequential(state.Timesteps, state.Channels)
	for i, ls := range state.Layers {
		switch ls.Kind {
		case "conv1d":
			m.Add(NewConv1D(ls.Filters, ls.KernelSize, ls.Activation))
		case "dense":
			m.Add(NewDense(ls.Units, ls.Activation))
		default:
			return nil, errors.Errorf("layer %d has unknown kind %q", i, ls.Kind)
		}
	}

	// Weights are overwritten below; the source only feeds initialisation.
	if err := m.build(rand.New(rand.NewSource(0))); err != nil {
		return nil, err
	}

	var ws [][]float64
	for _, ls := range state.Layers {
		ws = append(ws, ls.Weights...)
	}
	if err := m.SetWeights(ws); err != nil {
		return nil, err
	}

	m.history = state.History
	return m, nil
}
