package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/tensor"
)

func TestNewValidation(t *testing.T) {
	inputs := tensor.Zeros(tensor.Shape{3, 2})

	_, err := New(inputs, []int{0, 1, 2}, 3)
	assert.NoError(t, err)

	_, err = New(tensor.Zeros(tensor.Shape{6}), []int{0}, 2)
	assert.Error(t, err, "inputs must be 2D")

	_, err = New(inputs, []int{0, 1}, 3)
	assert.Error(t, err, "label count must match sample count")

	_, err = New(inputs, []int{0, 1, 3}, 3)
	assert.Error(t, err, "labels must be in range")

	_, err = New(inputs, []int{0, 1, -1}, 3)
	assert.Error(t, err, "negative labels are invalid")
}

func TestAccessors(t *testing.T) {
	inputs := tensor.Zeros(tensor.Shape{5, 3})
	ds, err := New(inputs, []int{0, 1, 0, 1, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, 3, ds.Features())
	assert.Equal(t, 2, ds.Classes())
}

func TestBatchesPartialFinal(t *testing.T) {
	inputs, err := tensor.FromFloat32(tensor.Shape{5, 1}, []float32{0, 1, 2, 3, 4})
	require.NoError(t, err)
	ds, err := New(inputs, []int{0, 1, 2, 3, 4}, 5)
	require.NoError(t, err)

	batches := ds.Batches(2, nil)
	require.Len(t, batches, 3)
	assert.Equal(t, 2, len(batches[0].Labels))
	assert.Equal(t, 2, len(batches[1].Labels))
	assert.Equal(t, 1, len(batches[2].Labels), "final batch holds the remainder")

	// Without shuffling, order is preserved and inputs stay paired with
	// their labels.
	assert.Equal(t, []float32{0, 1}, batches[0].Inputs.AsFloat32())
	assert.Equal(t, []int{0, 1}, batches[0].Labels)
	assert.Equal(t, []float32{4}, batches[2].Inputs.AsFloat32())
}

func TestBatchesShuffleCoversAllSamples(t *testing.T) {
	inputs, err := tensor.FromFloat32(tensor.Shape{6, 1}, []float32{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	ds, err := New(inputs, []int{0, 1, 2, 3, 4, 5}, 6)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, batch := range ds.Batches(4, rand.New(rand.NewSource(9))) {
		data := batch.Inputs.AsFloat32()
		for i, label := range batch.Labels {
			assert.Equal(t, float32(label), data[i], "input/label pairing must survive shuffling")
			seen[label] = true
		}
	}
	assert.Len(t, seen, 6, "every sample appears exactly once per epoch")
}

func TestBatchesInvalidSizePanics(t *testing.T) {
	ds, err := New(tensor.Zeros(tensor.Shape{2, 1}), []int{0, 0}, 1)
	require.NoError(t, err)
	assert.Panics(t, func() { ds.Batches(0, nil) })
}

func TestSynthetic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ds, err := Synthetic(120, 4, 3, rng)
	require.NoError(t, err)

	assert.Equal(t, 120, ds.Len())
	assert.Equal(t, 4, ds.Features())
	assert.Equal(t, 3, ds.Classes())

	counts := make(map[int]int)
	for _, l := range ds.Labels() {
		counts[l]++
	}
	assert.Len(t, counts, 3, "all classes represented")

	_, err = Synthetic(10, 1, 2, rng)
	assert.Error(t, err, "needs at least 2 features for the cluster layout")
}
