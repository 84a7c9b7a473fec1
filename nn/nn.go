// Copyright 2025 Slate ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for Slate's neural network layers.
//
// Layers implement the Module interface (Forward, Backward, Parameters)
// and compose into networks:
//
//	model, err := nn.NewMLP(nn.MLPConfig{
//		InputSize:   784,
//		OutputSize:  10,
//		HiddenSizes: []int{512, 256, 128},
//		Rand:        rng,
//	})
//	logits := model.Forward(batch)
package nn

import (
	"math/rand"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

// Module is the interface implemented by all network layers.
type Module = nn.Module

// Parameter is a trainable tensor with an accumulated gradient.
type Parameter = nn.Parameter

// NewParameter wraps a tensor as a named trainable parameter.
func NewParameter(name string, value *tensor.Dense) *Parameter {
	return nn.NewParameter(name, value)
}

// Linear is a fully connected layer: y = x·Wᵀ + b.
type Linear = nn.Linear

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// Activation layers.
type (
	ReLU    = nn.ReLU
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
)

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU { return nn.NewReLU() }

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() *Sigmoid { return nn.NewSigmoid() }

// NewTanh creates a Tanh activation.
func NewTanh() *Tanh { return nn.NewTanh() }

// Sequential chains modules, applying them in order.
type Sequential = nn.Sequential

// NewSequential creates a Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// CrossEntropyLoss combines softmax and negative log-likelihood.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss { return nn.NewCrossEntropyLoss() }

// MSELoss is mean squared error.
type MSELoss = nn.MSELoss

// NewMSELoss creates a mean-squared-error criterion.
func NewMSELoss() *MSELoss { return nn.NewMSELoss() }

// MLP is a fully connected classifier with ReLU activations.
type MLP = nn.MLP

// MLPConfig configures MLP construction.
type MLPConfig = nn.MLPConfig

// NewMLP creates a freshly initialized, untrained classifier.
func NewMLP(cfg MLPConfig) (*MLP, error) {
	return nn.NewMLP(cfg)
}

// Xavier initializes a tensor with Glorot-uniform values.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Dense {
	return nn.Xavier(fanIn, fanOut, shape, rng)
}
