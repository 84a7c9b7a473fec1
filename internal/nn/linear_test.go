package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/tensor"
)

func newTestLinear(t *testing.T) *Linear {
	t.Helper()
	layer := NewLinear(2, 2, rand.New(rand.NewSource(1)))

	weight, err := tensor.FromFloat32(tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	bias, err := tensor.FromFloat32(tensor.Shape{2}, []float32{0.5, -0.5})
	require.NoError(t, err)
	require.NoError(t, layer.LoadStateDict(map[string]*tensor.Dense{
		"weight": weight,
		"bias":   bias,
	}))
	return layer
}

func TestLinearForward(t *testing.T) {
	layer := newTestLinear(t)

	x, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)

	y := layer.Forward(x)
	assert.Equal(t, tensor.Shape{1, 2}, y.Shape())
	// y = x @ W.T + b = [1+2+0.5, 3+4-0.5]
	assert.Equal(t, []float32{3.5, 6.5}, y.AsFloat32())
}

func TestLinearBackward(t *testing.T) {
	layer := newTestLinear(t)

	x, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)
	layer.Forward(x)

	grad, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)
	dx := layer.Backward(grad)

	// dW = dy.T @ x
	assert.Equal(t, []float32{1, 1, 1, 1}, layer.Weight().Grad().AsFloat32())
	// db = column sums of dy
	assert.Equal(t, []float32{1, 1}, layer.Bias().Grad().AsFloat32())
	// dx = dy @ W = [1+3, 2+4]
	assert.Equal(t, []float32{4, 6}, dx.AsFloat32())
}

func TestLinearGradAccumulation(t *testing.T) {
	layer := newTestLinear(t)
	x, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)
	grad, err := tensor.FromFloat32(tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)

	layer.Forward(x)
	layer.Backward(grad)
	layer.Forward(x)
	layer.Backward(grad)

	// Two backward passes without ZeroGrad accumulate.
	assert.Equal(t, []float32{2, 2}, layer.Bias().Grad().AsFloat32())

	for _, p := range layer.Parameters() {
		p.ZeroGrad()
	}
	assert.Nil(t, layer.Bias().Grad())
}

func TestLinearLoadStateDictRejectsBadShapes(t *testing.T) {
	layer := NewLinear(2, 2, rand.New(rand.NewSource(1)))

	err := layer.LoadStateDict(map[string]*tensor.Dense{
		"weight": tensor.Zeros(tensor.Shape{3, 2}),
		"bias":   tensor.Zeros(tensor.Shape{2}),
	})
	assert.Error(t, err)

	err = layer.LoadStateDict(map[string]*tensor.Dense{
		"weight": tensor.Zeros(tensor.Shape{2, 2}),
	})
	assert.Error(t, err, "missing bias")
}

func TestXavierBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := Xavier(100, 50, tensor.Shape{50, 100}, rng)

	bound := float32(0.2) // sqrt(6/150) ~= 0.2
	for _, v := range w.AsFloat32() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}
}
