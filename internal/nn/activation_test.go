package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/tensor"
)

func TestReLU(t *testing.T) {
	relu := NewReLU()

	x, err := tensor.FromFloat32(tensor.Shape{1, 4}, []float32{-2, -0.5, 0, 3})
	require.NoError(t, err)

	y := relu.Forward(x)
	assert.Equal(t, []float32{0, 0, 0, 3}, y.AsFloat32())

	grad, err := tensor.FromFloat32(tensor.Shape{1, 4}, []float32{1, 1, 1, 1})
	require.NoError(t, err)
	dx := relu.Backward(grad)
	assert.Equal(t, []float32{0, 0, 0, 1}, dx.AsFloat32())

	assert.Empty(t, relu.Parameters())
}

func TestSigmoid(t *testing.T) {
	sig := NewSigmoid()

	x, err := tensor.FromFloat32(tensor.Shape{1, 1}, []float32{0})
	require.NoError(t, err)

	y := sig.Forward(x)
	assert.InDelta(t, 0.5, y.AsFloat32()[0], 1e-6)

	grad := tensor.Full(tensor.Shape{1, 1}, 1)
	dx := sig.Backward(grad)
	assert.InDelta(t, 0.25, dx.AsFloat32()[0], 1e-6)
}

func TestTanh(t *testing.T) {
	th := NewTanh()

	x, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{0, 100})
	require.NoError(t, err)

	y := th.Forward(x)
	assert.InDelta(t, 0, y.AsFloat32()[0], 1e-6)
	assert.InDelta(t, 1, y.AsFloat32()[1], 1e-6)

	grad := tensor.Full(tensor.Shape{1, 2}, 1)
	dx := th.Backward(grad)
	assert.InDelta(t, 1, dx.AsFloat32()[0], 1e-6)
	assert.InDelta(t, 0, dx.AsFloat32()[1], 1e-6)
}

func TestActivationBackwardBeforeForwardPanics(t *testing.T) {
	grad := tensor.Full(tensor.Shape{1}, 1)
	assert.Panics(t, func() { NewReLU().Backward(grad) })
	assert.Panics(t, func() { NewSigmoid().Backward(grad) })
	assert.Panics(t, func() { NewTanh().Backward(grad) })
}
