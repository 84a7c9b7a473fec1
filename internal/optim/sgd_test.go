package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

func newTestParam(t *testing.T, value, grad float32) *nn.Parameter {
	t.Helper()
	p := nn.NewParameter("weight", tensor.Full(tensor.Shape{1}, value))
	p.AccumGrad(tensor.Full(tensor.Shape{1}, grad))
	return p
}

func TestSGDStep(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step()
	assert.InDelta(t, 0.95, p.Value().AsFloat32()[0], 1e-6)
	assert.Equal(t, "SGD", opt.Name())
	assert.Equal(t, float32(0.1), opt.GetLR())
}

func TestSGDMomentum(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	// v = 0.5; p = 1 - 0.1*0.5 = 0.95
	opt.Step()
	assert.InDelta(t, 0.95, p.Value().AsFloat32()[0], 1e-6)

	// v = 0.9*0.5 + 0.5 = 0.95; p = 0.95 - 0.095 = 0.855
	opt.ZeroGrad()
	p.AccumGrad(tensor.Full(tensor.Shape{1}, 0.5))
	opt.Step()
	assert.InDelta(t, 0.855, p.Value().AsFloat32()[0], 1e-6)
}

func TestSGDSkipsParamsWithoutGrad(t *testing.T) {
	p := nn.NewParameter("weight", tensor.Full(tensor.Shape{1}, 1.0))
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step()
	assert.Equal(t, float32(1.0), p.Value().AsFloat32()[0])
}

func TestSGDDefaultLR(t *testing.T) {
	opt := NewSGD(nil, SGDConfig{})
	assert.Equal(t, float32(0.01), opt.GetLR())

	opt.SetLR(0.5)
	assert.Equal(t, float32(0.5), opt.GetLR())
}

func TestSGDStateDictRoundTrip(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})
	opt.Step()

	state := opt.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDelta(t, 0.5, state["velocity.0"].AsFloat32()[0], 1e-6)

	p2 := newTestParam(t, 0.95, 0.5)
	opt2 := NewSGD([]*nn.Parameter{p2}, SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, opt2.LoadStateDict(state))

	// Restored velocity continues the trajectory.
	opt2.Step()
	assert.InDelta(t, 0.855, p2.Value().AsFloat32()[0], 1e-6)
}

func TestSGDLoadStateDictRejectsBadShape(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	err := opt.LoadStateDict(map[string]*tensor.Dense{
		"velocity.0": tensor.Zeros(tensor.Shape{3}),
	})
	assert.Error(t, err)
}

func TestSGDWithoutMomentumHasEmptyState(t *testing.T) {
	p := newTestParam(t, 1.0, 0.5)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})
	opt.Step()
	assert.Empty(t, opt.StateDict())
}
