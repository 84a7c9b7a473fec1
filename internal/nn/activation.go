package nn

import (
	"math"

	"github.com/slate-ml/slate/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// ReLU is the most commonly used activation function in deep learning.
// It helps with the vanishing gradient problem and is computationally cheap.
type ReLU struct {
	mask []bool // true where the input was positive
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Dense) *tensor.Dense {
	output := input.Clone()
	data := output.AsFloat32()
	r.mask = make([]bool, len(data))
	for i, v := range data {
		if v > 0 {
			r.mask[i] = true
		} else {
			data[i] = 0
		}
	}
	return output
}

// Backward zeroes the gradient wherever the input was non-positive.
func (r *ReLU) Backward(grad *tensor.Dense) *tensor.Dense {
	if r.mask == nil {
		panic("ReLU.Backward: called before Forward")
	}
	out := grad.Clone()
	data := out.AsFloat32()
	for i := range data {
		if !r.mask[i] {
			data[i] = 0
		}
	}
	return out
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
type Sigmoid struct {
	output *tensor.Dense // σ(x), reused in Backward
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid) Forward(input *tensor.Dense) *tensor.Dense {
	output := input.Clone()
	data := output.AsFloat32()
	for i, v := range data {
		data[i] = float32(1.0 / (1.0 + math.Exp(-float64(v))))
	}
	s.output = output
	return output
}

// Backward uses σ'(x) = σ(x) * (1 - σ(x)).
func (s *Sigmoid) Backward(grad *tensor.Dense) *tensor.Dense {
	if s.output == nil {
		panic("Sigmoid.Backward: called before Forward")
	}
	out := grad.Clone()
	data := out.AsFloat32()
	sig := s.output.AsFloat32()
	for i := range data {
		data[i] *= sig[i] * (1 - sig[i])
	}
	return out
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
//
// Tanh squashes values to the range (-1, 1). It is zero-centered, which can
// help with training dynamics.
type Tanh struct {
	output *tensor.Dense
}

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies Tanh activation.
func (t *Tanh) Forward(input *tensor.Dense) *tensor.Dense {
	output := input.Clone()
	data := output.AsFloat32()
	for i, v := range data {
		data[i] = float32(math.Tanh(float64(v)))
	}
	t.output = output
	return output
}

// Backward uses tanh'(x) = 1 - tanh(x)^2.
func (t *Tanh) Backward(grad *tensor.Dense) *tensor.Dense {
	if t.output == nil {
		panic("Tanh.Backward: called before Forward")
	}
	out := grad.Clone()
	data := out.AsFloat32()
	th := t.output.AsFloat32()
	for i := range data {
		data[i] *= 1 - th[i]*th[i]
	}
	return out
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh) Parameters() []*Parameter {
	return nil
}
