// Package nn implements the neural network building blocks of the Slate
// toolkit.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient accumulation
//   - Linear: Fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: CrossEntropyLoss, MSELoss
//   - Sequential: Container for stacking layers
//   - MLP: Fully connected classifier with a deterministic parameter
//     naming scheme, used as the model factory for checkpoints
//
// Design inspired by PyTorch's nn.Module. Gradients flow through explicit
// Backward calls on each module rather than a recorded tape: every module
// caches what it needs during Forward and consumes it in Backward.
package nn

import (
	"github.com/slate-ml/slate/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build feed-forward architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, rng),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// For layers operating on batches the input shape is
	// [batch_size, features]. The module caches whatever intermediate
	// state its Backward pass needs.
	Forward(input *tensor.Dense) *tensor.Dense

	// Backward propagates the gradient of the loss with respect to the
	// module output back to its input, accumulating parameter gradients
	// along the way.
	//
	// Must be called after Forward with a gradient of the same shape as
	// the Forward output. Returns the gradient with respect to the input.
	Backward(grad *tensor.Dense) *tensor.Dense

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}
