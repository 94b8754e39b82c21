package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Shape is the per-sample shape flowing between layers: Steps positions of
// Width features. A batch of n samples travels as an (n·Steps)×Width matrix.
type Shape struct {
	Steps int
	Width int
}

type param struct {
	value *mat.Dense
	grad  *mat.Dense
}

// Layer is a building block of a Sequential model.
type Layer interface {
	// Kind names the layer type, e.g. "conv1d".
	Kind() string

	build(in Shape, rng *rand.Rand) (Shape, error)
	forward(x *mat.Dense) *mat.Dense
	backward(grad *mat.Dense) *mat.Dense
	params() []*param
	config() layerConfig
}

// glorotUniform fills a rows×cols kernel from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(rows, cols, fanIn, fanOut int, rng *rand.Rand) *mat.Dense {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (2*rng.Float64() - 1) * limit
	}
	return mat.NewDense(rows, cols, data)
}

func newParam(value *mat.Dense) param {
	r, c := value.Dims()
	return param{value: value, grad: mat.NewDense(r, c, nil)}
}

// affine computes x·w + b with b broadcast over rows.
func affine(x, w, b *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	_, c := w.Dims()
	z := mat.NewDense(r, c, nil)
	z.Mul(x, w)
	bias := b.RawRowView(0)
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}
	return z
}

func activate(z *mat.Dense, act Activation) *mat.Dense {
	r, c := z.Dims()
	a := mat.NewDense(r, c, nil)
	a.Apply(func(_, _ int, v float64) float64 { return act.fn(v) }, z)
	return a
}

// activationGrad returns grad ⊙ act'(z).
func activationGrad(grad, z, a *mat.Dense, act Activation) *mat.Dense {
	r, c := grad.Dims()
	dz := mat.NewDense(r, c, nil)
	dz.Apply(func(i, j int, g float64) float64 {
		return g * act.grad(z.At(i, j), a.At(i, j))
	}, grad)
	return dz
}

// backpropAffine sets the kernel and bias gradients of z = x·w + b and
// returns the gradient with respect to x.
func backpropAffine(dz, x *mat.Dense, kernel, bias *param) *mat.Dense {
	kernel.grad.Mul(x.T(), dz)

	db := bias.grad.RawRowView(0)
	for j := range db {
		db[j] = 0
	}
	r, _ := dz.Dims()
	for i := 0; i < r; i++ {
		for j, v := range dz.RawRowView(i) {
			db[j] += v
		}
	}

	xr, xc := x.Dims()
	dx := mat.NewDense(xr, xc, nil)
	dx.Mul(dz, kernel.value.T())
	return dx
}

// Conv1D is a one-dimensional convolution with valid padding and stride 1.
// A kernel spanning all input steps collapses the time axis to one position.
type Conv1D struct {
	Filters    int
	KernelSize int
	activation string

	act    Activation
	in     Shape
	out    Shape
	kernel param
	bias   param

	cols, z, a *mat.Dense
}

// NewConv1D creates a convolution with the given number of filters, kernel
// width and activation name.
func NewConv1D(filters, kernelSize int, activation string) *Conv1D {
	return &Conv1D{Filters: filters, KernelSize: kernelSize, activation: activation}
}

// Kind implements Layer.
func (c *Conv1D) Kind() string { return "conv1d" }

func (c *Conv1D) build(in Shape, rng *rand.Rand) (Shape, error) {
	if c.Filters < 1 {
		return Shape{}, errors.Errorf("conv1d needs at least one filter, got %d", c.Filters)
	}
	if c.KernelSize < 1 || c.KernelSize > in.Steps {
		return Shape{}, errors.Errorf("conv1d kernel of %d does not fit %d input steps", c.KernelSize, in.Steps)
	}
	act, err := ActivationByName(c.activation)
	if err != nil {
		return Shape{}, err
	}

	c.act = act
	c.in = in
	c.out = Shape{Steps: in.Steps - c.KernelSize + 1, Width: c.Filters}
	patch := c.KernelSize * in.Width
	c.kernel = newParam(glorotUniform(patch, c.Filters, patch, c.KernelSize*c.Filters, rng))
	c.bias = newParam(mat.NewDense(1, c.Filters, nil))
	return c.out, nil
}

// im2col gathers every kernel-wide patch into one row: the patch at
// position l of sample b is input rows b·Steps+l .. b·Steps+l+KernelSize-1.
func (c *Conv1D) im2col(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	batch := rows / c.in.Steps
	width := c.in.Width

	cols := mat.NewDense(batch*c.out.Steps, c.KernelSize*width, nil)
	for b := 0; b < batch; b++ {
		for l := 0; l < c.out.Steps; l++ {
			dst := cols.RawRowView(b*c.out.Steps + l)
			for k := 0; k < c.KernelSize; k++ {
				copy(dst[k*width:(k+1)*width], x.RawRowView(b*c.in.Steps+l+k))
			}
		}
	}
	return cols
}

func (c *Conv1D) forward(x *mat.Dense) *mat.Dense {
	c.cols = c.im2col(x)
	c.z = affine(c.cols, c.kernel.value, c.bias.value)
	c.a = activate(c.z, c.act)
	return c.a
}

func (c *Conv1D) backward(grad *mat.Dense) *mat.Dense {
	dz := activationGrad(grad, c.z, c.a, c.act)
	dcols := backpropAffine(dz, c.cols, &c.kernel, &c.bias)

	// col2im: scatter-add each patch gradient back onto its input rows.
	rows, _ := dcols.Dims()
	batch := rows / c.out.Steps
	width := c.in.Width
	dx := mat.NewDense(batch*c.in.Steps, width, nil)
	for b := 0; b < batch; b++ {
		for l := 0; l < c.out.Steps; l++ {
			src := dcols.RawRowView(b*c.out.Steps + l)
			for k := 0; k < c.KernelSize; k++ {
				dst := dx.RawRowView(b*c.in.Steps + l + k)
				for j := range dst {
					dst[j] += src[k*width+j]
				}
			}
		}
	}
	return dx
}

func (c *Conv1D) params() []*param { return []*param{&c.kernel, &c.bias} }

func (c *Conv1D) config() layerConfig {
	return layerConfig{Kind: c.Kind(), Filters: c.Filters, KernelSize: c.KernelSize, Activation: c.activation}
}

// Dense is a fully-connected layer applied independently at every step.
type Dense struct {
	Units      int
	activation string

	act    Activation
	kernel param
	bias   param

	x, z, a *mat.Dense
}

// NewDense creates a fully-connected layer with the given units and
// activation name; the empty name is linear.
func NewDense(units int, activation string) *Dense {
	return &Dense{Units: units, activation: activation}
}

// Kind implements Layer.
func (d *Dense) Kind() string { return "dense" }

func (d *Dense) build(in Shape, rng *rand.Rand) (Shape, error) {
	if d.Units < 1 {
		return Shape{}, errors.Errorf("dense needs at least one unit, got %d", d.Units)
	}
	act, err := ActivationByName(d.activation)
	if err != nil {
		return Shape{}, err
	}

	d.act = act
	d.kernel = newParam(glorotUniform(in.Width, d.Units, in.Width, d.Units, rng))
	d.bias = newParam(mat.NewDense(1, d.Units, nil))
	return Shape{Steps: in.Steps, Width: d.Units}, nil
}

func (d *Dense) forward(x *mat.Dense) *mat.Dense {
	d.x = x
	d.z = affine(x, d.kernel.value, d.bias.value)
	d.a = activate(d.z, d.act)
	return d.a
}

func (d *Dense) backward(grad *mat.Dense) *mat.Dense {
	dz := activationGrad(grad, d.z, d.a, d.act)
	return backpropAffine(dz, d.x, &d.kernel, &d.bias)
}

func (d *Dense) params() []*param { return []*param{&d.kernel, &d.bias} }

func (d *Dense) config() layerConfig {
	return layerConfig{Kind: d.Kind(), Units: d.Units, Activation: d.activation}
}
