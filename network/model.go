package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Model is a sequential stack of layers regressing a single output. Inputs
// are samples×(timesteps·channels) matrices laid out timestep-major.
type Model struct {
	timesteps int
	channels  int
	layers    []Layer
	output    Shape
	built     bool
	optimizer *Adam
	history   *History
}

// NewSequential creates an empty model for windows of the given shape.
func NewSequential(timesteps, channels int) *Model {
	return &Model{timesteps: timesteps, channels: channels}
}

// Add appends a layer. It has no effect once the model is built.
func (m *Model) Add(l Layer) {
	if m.built {
		return
	}
	m.layers = append(m.layers, l)
}

// Layers returns the model's layers in order.
func (m *Model) Layers() []Layer { return m.layers }

// InputShape returns the timesteps and channels the model expects.
func (m *Model) InputShape() (timesteps, channels int) { return m.timesteps, m.channels }

// OutputSteps is the number of output positions per sample; it is 1 when
// the convolution spans the whole window.
func (m *Model) OutputSteps() int { return m.output.Steps }

// History returns the history of the last Fit, or nil.
func (m *Model) History() *History { return m.history }

// build infers every layer's shape and initialises its weights from rng.
func (m *Model) build(rng *rand.Rand) error {
	if m.built {
		return errors.New("model is already built")
	}
	if m.timesteps < 1 || m.channels < 1 {
		return errors.Errorf("input shape %dx%d is empty", m.timesteps, m.channels)
	}
	if len(m.layers) == 0 {
		return errors.New("model has no layers")
	}

	shape := Shape{Steps: m.timesteps, Width: m.channels}
	for i, l := range m.layers {
		next, err := l.build(shape, rng)
		if err != nil {
			return errors.Wrapf(err, "building layer %d (%s)", i, l.Kind())
		}
		shape = next
	}
	if shape.Width != 1 {
		return errors.Errorf("last layer must have a single output, got %d", shape.Width)
	}

	m.output = shape
	m.built = true
	return nil
}

// Compile builds the model with weights drawn from rng and attaches the
// optimizer. The loss is always mean squared error. Compiling a model that
// is already built keeps its weights and only swaps the optimizer.
func (m *Model) Compile(optimizer *Adam, rng *rand.Rand) error {
	if optimizer == nil {
		return errors.New("compile needs an optimizer")
	}
	if !m.built {
		if rng == nil {
			return errors.New("compile needs a random source")
		}
		if err := m.build(rng); err != nil {
			return err
		}
	}
	m.optimizer = optimizer
	return nil
}

func (m *Model) params() []*param {
	var ps []*param
	for _, l := range m.layers {
		ps = append(ps, l.params()...)
	}
	return ps
}

func (m *Model) checkInput(x *mat.Dense) error {
	if !m.built {
		return errors.New("model is not built")
	}
	r, c := x.Dims()
	if want := m.timesteps * m.channels; c != want {
		return errors.Errorf("input has %d columns, model expects %d (%d timesteps x %d channels)",
			c, want, m.timesteps, m.channels)
	}
	if r == 0 {
		return errors.New("input has no samples")
	}
	return nil
}

// forward runs a samples×(timesteps·channels) batch through every layer and
// returns the (samples·OutputSteps)×1 output.
func (m *Model) forward(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	h := mat.NewDense(r*m.timesteps, m.channels, nil)
	for i := 0; i < r; i++ {
		row := x.RawRowView(i)
		for t := 0; t < m.timesteps; t++ {
			copy(h.RawRowView(i*m.timesteps+t), row[t*m.channels:(t+1)*m.channels])
		}
	}

	for _, l := range m.layers {
		h = l.forward(h)
	}
	return h
}

func (m *Model) backward(grad *mat.Dense) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		grad = m.layers[i].backward(grad)
	}
}

// Predict returns one row per sample and output position.
func (m *Model) Predict(x *mat.Dense) (*mat.Dense, error) {
	if err := m.checkInput(x); err != nil {
		return nil, err
	}
	return m.forward(x), nil
}

// expandTargets repeats each target once per output position.
func expandTargets(y *mat.Dense, rows []int, steps int) *mat.Dense {
	t := mat.NewDense(len(rows)*steps, 1, nil)
	for i, r := range rows {
		v := y.At(r, 0)
		for l := 0; l < steps; l++ {
			t.Set(i*steps+l, 0, v)
		}
	}
	return t
}

// squaredError returns the residual out-target and its sum of squares.
func squaredError(out, target *mat.Dense) (*mat.Dense, float64) {
	r, c := out.Dims()
	diff := mat.NewDense(r, c, nil)
	diff.Sub(out, target)

	sse := 0.0
	for i := 0; i < r; i++ {
		for _, v := range diff.RawRowView(i) {
			sse += v * v
		}
	}
	return diff, sse
}

// Evaluate computes the loss and metrics on x and y.
func (m *Model) Evaluate(x, y *mat.Dense) (Logs, error) {
	if err := m.checkTargets(x, y); err != nil {
		return nil, err
	}

	r, _ := x.Dims()
	rows := make([]int, r)
	for i := range rows {
		rows[i] = i
	}
	target := expandTargets(y, rows, m.output.Steps)
	_, sse := squaredError(m.forward(x), target)

	mse := sse / float64(r*m.output.Steps)
	return Logs{LogLoss: mse, LogRMSE: math.Sqrt(mse)}, nil
}

func (m *Model) checkTargets(x, y *mat.Dense) error {
	if err := m.checkInput(x); err != nil {
		return err
	}
	xr, _ := x.Dims()
	yr, yc := y.Dims()
	if yc != 1 {
		return errors.Errorf("targets have %d columns, expected 1", yc)
	}
	if xr != yr {
		return errors.Errorf("%d samples but %d targets", xr, yr)
	}
	return nil
}

// Weights returns copies of every kernel and bias in layer order.
func (m *Model) Weights() [][]float64 {
	var ws [][]float64
	for _, p := range m.params() {
		ws = append(ws, append([]float64(nil), p.value.RawMatrix().Data...))
	}
	return ws
}

// SetWeights overwrites every kernel and bias, in the order Weights returns
// them.
func (m *Model) SetWeights(ws [][]float64) error {
	ps := m.params()
	if len(ws) != len(ps) {
		return errors.Errorf("got %d weight arrays, model has %d", len(ws), len(ps))
	}
	for i, p := range ps {
		data := p.value.RawMatrix().Data
		if len(ws[i]) != len(data) {
			return errors.Errorf("weight array %d has %d values, expected %d", i, len(ws[i]), len(data))
		}
		copy(data, ws[i])
	}
	return nil
}
