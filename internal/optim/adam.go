package optim

import (
	"fmt"
	"math"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

// Adam implements the Adaptive Moment Estimation optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Adam adapts the learning rate per parameter and generally converges with
// less tuning than plain SGD.
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int // Timestep for bias correction

	m map[*nn.Parameter]*tensor.Dense // First moment estimates
	v map[*nn.Parameter]*tensor.Dense // Second moment estimates
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Moment decay rates (default: 0.9, 0.999)
	Eps   float32    // Numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 && config.Betas[1] == 0 {
		config.Betas = [2]float32{0.9, 0.999}
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.Dense),
		v:      make(map[*nn.Parameter]*tensor.Dense),
	}
}

// Step performs a single optimization step using the Adam algorithm.
func (a *Adam) Step() {
	a.t++
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		if !hasGrad(param) {
			continue
		}

		m, exists := a.m[param]
		if !exists {
			m = tensor.Zeros(param.Value().Shape())
			a.m[param] = m
			a.v[param] = tensor.Zeros(param.Value().Shape())
		}
		v := a.v[param]

		mData := m.AsFloat32()
		vData := v.AsFloat32()
		pData := param.Value().AsFloat32()
		gData := param.Grad().AsFloat32()

		for i, g := range gData {
			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2

			pData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// Name returns "Adam".
func (a *Adam) Name() string {
	return "Adam"
}

// StateDict returns the optimizer state for serialization.
//
// Exports moment buffers keyed "m.{param_index}" and "v.{param_index}"
// plus the timestep as a single-element "t" tensor.
func (a *Adam) StateDict() map[string]*tensor.Dense {
	stateDict := make(map[string]*tensor.Dense)

	for i, param := range a.params {
		m, exists := a.m[param]
		if !exists {
			continue
		}
		stateDict[fmt.Sprintf("m.%d", i)] = m
		stateDict[fmt.Sprintf("v.%d", i)] = a.v[param]
	}

	if a.t > 0 {
		stateDict["t"] = tensor.Full(tensor.Shape{1}, float32(a.t))
	}
	return stateDict
}

// LoadStateDict restores moment buffers and the timestep.
//
// Returns an error if a buffer shape does not match its parameter shape.
func (a *Adam) LoadStateDict(stateDict map[string]*tensor.Dense) error {
	a.m = make(map[*nn.Parameter]*tensor.Dense)
	a.v = make(map[*nn.Parameter]*tensor.Dense)

	for i, param := range a.params {
		m, mOK := stateDict[fmt.Sprintf("m.%d", i)]
		v, vOK := stateDict[fmt.Sprintf("v.%d", i)]
		if !mOK || !vOK {
			continue // Will be initialized on first step
		}
		if !m.Shape().Equal(param.Value().Shape()) {
			return fmt.Errorf("first moment shape mismatch for parameter %d: expected %v, got %v",
				i, param.Value().Shape(), m.Shape())
		}
		if !v.Shape().Equal(param.Value().Shape()) {
			return fmt.Errorf("second moment shape mismatch for parameter %d: expected %v, got %v",
				i, param.Value().Shape(), v.Shape())
		}
		a.m[param] = m.Clone()
		a.v[param] = v.Clone()
	}

	if t, ok := stateDict["t"]; ok {
		a.t = int(t.AsFloat32()[0])
	}
	return nil
}
