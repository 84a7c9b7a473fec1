package nn

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/tensor"
)

func TestNewMLPValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  MLPConfig
	}{
		{"zero input", MLPConfig{InputSize: 0, OutputSize: 10, HiddenSizes: []int{8}}},
		{"zero output", MLPConfig{InputSize: 4, OutputSize: 0, HiddenSizes: []int{8}}},
		{"no hidden layers", MLPConfig{InputSize: 4, OutputSize: 10}},
		{"negative hidden", MLPConfig{InputSize: 4, OutputSize: 10, HiddenSizes: []int{8, -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMLP(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestMLPStateDictNaming(t *testing.T) {
	m, err := NewMLP(MLPConfig{
		InputSize:   784,
		OutputSize:  10,
		HiddenSizes: []int{512, 256, 128},
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	sd := m.StateDict()
	require.Len(t, sd, 8)

	wantShapes := map[string]tensor.Shape{
		"fc0.weight": {512, 784},
		"fc0.bias":   {512},
		"fc1.weight": {256, 512},
		"fc1.bias":   {256},
		"fc2.weight": {128, 256},
		"fc2.bias":   {128},
		"fc3.weight": {10, 128},
		"fc3.bias":   {10},
	}
	for name, want := range wantShapes {
		require.Contains(t, sd, name)
		assert.True(t, sd[name].Shape().Equal(want),
			"%s: want %v, got %v", name, want, sd[name].Shape())
	}
}

func TestMLPForwardShape(t *testing.T) {
	m, err := NewMLP(MLPConfig{
		InputSize:   4,
		OutputSize:  3,
		HiddenSizes: []int{8, 5},
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	out := m.Forward(tensor.Zeros(tensor.Shape{7, 4}))
	assert.Equal(t, tensor.Shape{7, 3}, out.Shape())

	preds := m.Predict(tensor.Zeros(tensor.Shape{7, 4}))
	assert.Len(t, preds, 7)
}

func TestMLPReproducibleInit(t *testing.T) {
	build := func(seed int64) *MLP {
		m, err := NewMLP(MLPConfig{
			InputSize:   4,
			OutputSize:  2,
			HiddenSizes: []int{3},
			Rand:        rand.New(rand.NewSource(seed)),
		})
		require.NoError(t, err)
		return m
	}

	a, b := build(42), build(42)
	for name, ta := range a.StateDict() {
		assert.True(t, tensor.AllClose(ta, b.StateDict()[name], 0),
			"parameter %s differs for identical seeds", name)
	}

	c := build(43)
	assert.False(t, tensor.AllClose(a.StateDict()["fc0.weight"], c.StateDict()["fc0.weight"], 0))
}

func TestMLPLoadStateDictRoundTrip(t *testing.T) {
	cfg := MLPConfig{InputSize: 4, OutputSize: 2, HiddenSizes: []int{3}}

	cfg.Rand = rand.New(rand.NewSource(1))
	src, err := NewMLP(cfg)
	require.NoError(t, err)

	cfg.Rand = rand.New(rand.NewSource(2))
	dst, err := NewMLP(cfg)
	require.NoError(t, err)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	for name, ts := range src.StateDict() {
		assert.True(t, tensor.AllClose(ts, dst.StateDict()[name], 0), name)
	}
}

func TestMLPLoadStateDictRejectsMismatch(t *testing.T) {
	m, err := NewMLP(MLPConfig{
		InputSize:   4,
		OutputSize:  2,
		HiddenSizes: []int{3},
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	other, err := NewMLP(MLPConfig{
		InputSize:   4,
		OutputSize:  2,
		HiddenSizes: []int{5},
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	assert.Error(t, m.LoadStateDict(other.StateDict()))
}

func TestMLPGradientDescentReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m, err := NewMLP(MLPConfig{
		InputSize:   2,
		OutputSize:  2,
		HiddenSizes: []int{8},
		Rand:        rng,
	})
	require.NoError(t, err)

	// Two well-separated points.
	inputs, err := tensor.FromFloat32(tensor.Shape{2, 2}, []float32{-1, -1, 1, 1})
	require.NoError(t, err)
	labels := []int{0, 1}
	criterion := NewCrossEntropyLoss()

	first := criterion.Forward(m.Forward(inputs), labels)
	for i := 0; i < 50; i++ {
		logits := m.Forward(inputs)
		criterion.Forward(logits, labels)
		m.Backward(criterion.Backward())
		for _, p := range m.Parameters() {
			value := p.Value().AsFloat32()
			for j, g := range p.Grad().AsFloat32() {
				value[j] -= 0.5 * g
			}
			p.ZeroGrad()
		}
	}
	last := criterion.Forward(m.Forward(inputs), labels)

	assert.Less(t, last, first, "loss should decrease: %v -> %v", first, last)
}

func TestSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seq := NewSequential(
		NewLinear(4, 3, rng),
		NewReLU(),
		NewLinear(3, 2, rng),
	)

	assert.Equal(t, 3, seq.Len())
	assert.Len(t, seq.Parameters(), 4)

	out := seq.Forward(tensor.Zeros(tensor.Shape{5, 4}))
	assert.Equal(t, tensor.Shape{5, 2}, out.Shape())

	grad := tensor.Full(tensor.Shape{5, 2}, 1)
	dx := seq.Backward(grad)
	assert.Equal(t, tensor.Shape{5, 4}, dx.Shape())
}

func TestParameterAccumGrad(t *testing.T) {
	p := NewParameter("weight", tensor.Zeros(tensor.Shape{2}))
	assert.Nil(t, p.Grad())

	g, err := tensor.FromFloat32(tensor.Shape{2}, []float32{1, 2})
	require.NoError(t, err)
	p.AccumGrad(g)
	p.AccumGrad(g)
	assert.Equal(t, []float32{2, 4}, p.Grad().AsFloat32())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())

	assert.Panics(t, func() { p.AccumGrad(tensor.Zeros(tensor.Shape{3})) })
}

func ExampleMLP_StateDict() {
	m, _ := NewMLP(MLPConfig{
		InputSize:   4,
		OutputSize:  2,
		HiddenSizes: []int{3},
		Rand:        rand.New(rand.NewSource(1)),
	})
	fmt.Println(len(m.StateDict()))
	// Output: 4
}
