package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

func TestAdamDefaults(t *testing.T) {
	opt := NewAdam(nil, AdamConfig{})
	assert.Equal(t, float32(0.001), opt.GetLR())
	assert.Equal(t, "Adam", opt.Name())
	assert.Equal(t, 0, opt.GetTimestep())
}

func TestAdamFirstStep(t *testing.T) {
	p := newTestParam(t, 1.0, 1.0)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})

	// After bias correction the first step moves by ~lr in the gradient
	// direction regardless of gradient magnitude.
	opt.Step()
	assert.Equal(t, 1, opt.GetTimestep())
	assert.InDelta(t, 0.999, p.Value().AsFloat32()[0], 1e-5)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = x^2 from x = 1; gradient is 2x.
	p := nn.NewParameter("x", tensor.Full(tensor.Shape{1}, 1.0))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.05})

	for i := 0; i < 200; i++ {
		x := p.Value().AsFloat32()[0]
		p.AccumGrad(tensor.Full(tensor.Shape{1}, 2*x))
		opt.Step()
		opt.ZeroGrad()
	}
	assert.InDelta(t, 0, p.Value().AsFloat32()[0], 0.1)
}

func TestAdamStateDictRoundTrip(t *testing.T) {
	p := newTestParam(t, 1.0, 1.0)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})
	opt.Step()
	opt.Step()

	state := opt.StateDict()
	require.Contains(t, state, "m.0")
	require.Contains(t, state, "v.0")
	require.Contains(t, state, "t")
	assert.Equal(t, float32(2), state["t"].AsFloat32()[0])

	p2 := newTestParam(t, 1.0, 1.0)
	opt2 := NewAdam([]*nn.Parameter{p2}, AdamConfig{LR: 0.001})
	require.NoError(t, opt2.LoadStateDict(state))
	assert.Equal(t, 2, opt2.GetTimestep())

	restored := opt2.StateDict()
	assert.True(t, tensor.AllClose(state["m.0"], restored["m.0"], 0))
	assert.True(t, tensor.AllClose(state["v.0"], restored["v.0"], 0))
}

func TestAdamLoadStateDictRejectsBadShape(t *testing.T) {
	p := newTestParam(t, 1.0, 1.0)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{})

	err := opt.LoadStateDict(map[string]*tensor.Dense{
		"m.0": tensor.Zeros(tensor.Shape{2}),
		"v.0": tensor.Zeros(tensor.Shape{1}),
	})
	assert.Error(t, err)
}
