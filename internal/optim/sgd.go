package optim

import (
	"fmt"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens
// oscillations.
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter]*tensor.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Dense),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	for _, param := range s.params {
		if !hasGrad(param) {
			continue
		}
		grad := param.Grad()

		if s.momentum == 0 {
			// param -= lr * grad
			axpy(-s.lr, grad, param.Value())
			continue
		}

		velocity, exists := s.velocities[param]
		if !exists {
			velocity = tensor.Zeros(param.Value().Shape())
			s.velocities[param] = velocity
		}

		// velocity = momentum * velocity + grad
		scale(s.momentum, velocity)
		axpy(1, grad, velocity)

		// param -= lr * velocity
		axpy(-s.lr, velocity, param.Value())
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// Name returns "SGD".
func (s *SGD) Name() string {
	return "SGD"
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum this exports one velocity buffer per parameter,
// keyed "velocity.{param_index}". Without momentum the map is empty.
func (s *SGD) StateDict() map[string]*tensor.Dense {
	stateDict := make(map[string]*tensor.Dense)
	if s.momentum == 0 {
		return stateDict
	}

	for i, param := range s.params {
		velocity, exists := s.velocities[param]
		if !exists {
			continue // No velocity yet (hasn't been used in training)
		}
		stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
	}
	return stateDict
}

// LoadStateDict restores velocity buffers for SGD with momentum.
//
// If momentum is 0 the provided state is ignored. Returns an error if a
// velocity shape does not match its parameter shape.
func (s *SGD) LoadStateDict(stateDict map[string]*tensor.Dense) error {
	if s.momentum == 0 {
		return nil
	}

	s.velocities = make(map[*nn.Parameter]*tensor.Dense)
	for i, param := range s.params {
		velocity, exists := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !exists {
			continue // Will be initialized on first step
		}
		if !velocity.Shape().Equal(param.Value().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Value().Shape(), velocity.Shape())
		}
		s.velocities[param] = velocity.Clone()
	}
	return nil
}
