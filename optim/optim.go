// Copyright 2025 Slate ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for Slate's optimizers.
//
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//		LR:       0.01,
//		Momentum: 0.9,
//	})
//	opt.Step()
//	opt.ZeroGrad()
package optim

import (
	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/optim"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam = optim.Adam

// AdamConfig configures Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}
