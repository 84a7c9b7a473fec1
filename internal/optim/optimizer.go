// Package optim implements optimization algorithms for training neural
// networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Design inspired by PyTorch's torch.optim. Optimizers read gradients
// accumulated on parameters by the backward pass and update the parameter
// values in place:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    loss := criterion.Forward(model.Forward(inputs), labels)
//	    model.Backward(criterion.Backward())
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	// Parameters with no accumulated gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called after each Step to prevent gradient
	// accumulation across iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float32

	// Name returns a short identifier ("SGD", "Adam") recorded in
	// checkpoint training metadata.
	Name() string

	// StateDict returns the optimizer state (momentum buffers, moment
	// estimates) for serialization. May be empty.
	StateDict() map[string]*tensor.Dense

	// LoadStateDict restores optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.Dense) error
}

// Config is the base configuration shared by all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// axpy computes y += alpha * x element-wise over Float32 tensors.
func axpy(alpha float32, x, y *tensor.Dense) {
	xd, yd := x.AsFloat32(), y.AsFloat32()
	for i := range yd {
		yd[i] += alpha * xd[i]
	}
}

// scale computes x *= alpha element-wise.
func scale(alpha float32, x *tensor.Dense) {
	xd := x.AsFloat32()
	for i := range xd {
		xd[i] *= alpha
	}
}

// hasGrad reports whether the parameter accumulated a gradient this step.
func hasGrad(p *nn.Parameter) bool {
	return p != nil && p.Grad() != nil
}
