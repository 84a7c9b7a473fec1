package nn

import (
	"math"
	"math/rand"

	"github.com/slate-ml/slate/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
// The random source is passed explicitly so that model construction is
// reproducible without touching process-global state.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Dense {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros(shape)
	data := t.AsFloat32()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Randn creates a Float32 tensor with values drawn from N(0, 1).
func Randn(shape tensor.Shape, rng *rand.Rand) *tensor.Dense {
	t := tensor.Zeros(shape)
	data := t.AsFloat32()
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	return t
}
