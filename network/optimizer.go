package network

import "math"

// Adam implements the Adam optimizer.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	iterations int
	slots      map[*param]*adamSlot
}

type adamSlot struct {
	m, v []float64
}

// NewAdam creates an Adam optimizer with the usual defaults
// (β1 0.9, β2 0.999, ε 1e-7). A non-positive rate falls back to 0.001.
func NewAdam(learningRate float64) *Adam {
	if learningRate <= 0 {
		learningRate = 0.001
	}
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		slots:        map[*param]*adamSlot{},
	}
}

// Iterations returns the number of updates applied.
func (a *Adam) Iterations() int { return a.iterations }

func (a *Adam) update(ps []*param) {
	if a.slots == nil {
		a.slots = map[*param]*adamSlot{}
	}
	a.iterations++
	t := float64(a.iterations)
	rate := a.LearningRate * math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))

	for _, p := range ps {
		value := p.value.RawMatrix().Data
		grad := p.grad.RawMatrix().Data

		s, ok := a.slots[p]
		if !ok {
			s = &adamSlot{m: make([]float64, len(value)), v: make([]float64, len(value))}
			a.slots[p] = s
		}

		for i, g := range grad {
			s.m[i] = a.Beta1*s.m[i] + (1-a.Beta1)*g
			s.v[i] = a.Beta2*s.v[i] + (1-a.Beta2)*g*g
			value[i] -= rate * s.m[i] / (math.Sqrt(s.v[i]) + a.Epsilon)
		}
	}
}
