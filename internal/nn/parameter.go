package nn

import (
	"github.com/slate-ml/slate/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors whose gradients are accumulated during the
// backward pass. They typically represent weights and biases of layers.
type Parameter struct {
	name  string        // Parameter name (e.g., "weight", "bias")
	value *tensor.Dense // The parameter tensor
	grad  *tensor.Dense // Accumulated gradient, allocated lazily
}

// NewParameter creates a new trainable parameter.
//
// The value tensor should be initialized before creating the Parameter.
// The gradient buffer is allocated on the first AccumGrad call.
func NewParameter(name string, value *tensor.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Dense {
	return p.value
}

// Grad returns the accumulated gradient tensor.
//
// Returns nil if no gradient has been accumulated since the last ZeroGrad.
func (p *Parameter) Grad() *tensor.Dense {
	return p.grad
}

// AccumGrad adds the given gradient to the parameter's gradient buffer.
//
// Panics if the gradient shape does not match the parameter shape; that is
// always a layer implementation bug, not a data problem.
func (p *Parameter) AccumGrad(g *tensor.Dense) {
	if !g.Shape().Equal(p.value.Shape()) {
		panic("parameter " + p.name + ": gradient shape " + g.Shape().String() +
			" does not match value shape " + p.value.Shape().String())
	}
	if p.grad == nil {
		p.grad = tensor.Zeros(p.value.Shape())
	}
	acc := p.grad.AsFloat32()
	for i, v := range g.AsFloat32() {
		acc[i] += v
	}
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
