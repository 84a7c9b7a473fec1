package nn

import (
	"fmt"

	"github.com/slate-ml/slate/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations. Backward runs the chain in
// reverse.
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Dense) *tensor.Dense {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Backward propagates the gradient through all modules in reverse order.
func (s *Sequential) Backward(grad *tensor.Dense) *tensor.Dense {
	for i := len(s.modules) - 1; i >= 0; i-- {
		grad = s.modules[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic(fmt.Sprintf("Sequential.Module: index %d out of bounds", index))
	}
	return s.modules[index]
}
