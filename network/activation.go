package network

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Activation is an element-wise nonlinearity.
type Activation struct {
	name string
	fn   func(z float64) float64
	// grad is the derivative at pre-activation z with output a.
	grad func(z, a float64) float64
}

// Name returns the canonical activation name.
func (a Activation) Name() string { return a.name }

const (
	seluAlpha = 1.6732632423543772
	seluScale = 1.0507009873554805
)

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

var activations = map[string]Activation{
	"linear": {
		name: "linear",
		fn:   func(z float64) float64 { return z },
		grad: func(_, _ float64) float64 { return 1 },
	},
	"relu": {
		name: "relu",
		fn:   func(z float64) float64 { return math.Max(0, z) },
		grad: func(z, _ float64) float64 {
			if z > 0 {
				return 1
			}
			return 0
		},
	},
	"tanh": {
		name: "tanh",
		fn:   math.Tanh,
		grad: func(_, a float64) float64 { return 1 - a*a },
	},
	"sigmoid": {
		name: "sigmoid",
		fn:   sigmoid,
		grad: func(_, a float64) float64 { return a * (1 - a) },
	},
	"elu": {
		name: "elu",
		fn: func(z float64) float64 {
			if z > 0 {
				return z
			}
			return math.Expm1(z)
		},
		grad: func(z, a float64) float64 {
			if z > 0 {
				return 1
			}
			return a + 1
		},
	},
	"selu": {
		name: "selu",
		fn: func(z float64) float64 {
			if z > 0 {
				return seluScale * z
			}
			return seluScale * seluAlpha * math.Expm1(z)
		},
		grad: func(z, a float64) float64 {
			if z > 0 {
				return seluScale
			}
			return a + seluScale*seluAlpha
		},
	},
	"softplus": {
		name: "softplus",
		fn: func(z float64) float64 {
			if z > 30 {
				return z
			}
			return math.Log1p(math.Exp(z))
		},
		grad: func(z, _ float64) float64 { return sigmoid(z) },
	},
	"swish": {
		name: "swish",
		fn:   func(z float64) float64 { return z * sigmoid(z) },
		grad: func(z, _ float64) float64 {
			s := sigmoid(z)
			return s + z*s*(1-s)
		},
	},
}

// ActivationByName looks up an activation. The empty name is linear.
func ActivationByName(name string) (Activation, error) {
	if name == "" {
		name = "linear"
	}
	a, ok := activations[name]
	if !ok {
		return Activation{}, errors.Errorf("unknown activation %q (known: %v)", name, ActivationNames())
	}
	return a, nil
}

// ActivationNames lists the known activation names in order.
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
