// Package dataset provides in-memory labeled datasets and mini-batch
// iteration for training classifiers.
package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/slate-ml/slate/internal/tensor"
)

// Dataset holds a labeled classification dataset in memory.
//
// Inputs are stored as one [num_samples, features] Float32 tensor; labels
// are class indices.
type Dataset struct {
	inputs  *tensor.Dense
	labels  []int
	classes int
}

// New creates a dataset from an inputs tensor and a label per sample.
//
// numClasses bounds the label values; every label must be in
// [0, numClasses).
func New(inputs *tensor.Dense, labels []int, numClasses int) (*Dataset, error) {
	shape := inputs.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("inputs must be 2D [samples, features], got shape %v", shape)
	}
	if shape[0] != len(labels) {
		return nil, fmt.Errorf("got %d samples but %d labels", shape[0], len(labels))
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("number of classes must be positive, got %d", numClasses)
	}
	for i, l := range labels {
		if l < 0 || l >= numClasses {
			return nil, fmt.Errorf("label %d at index %d out of range [0, %d)", l, i, numClasses)
		}
	}

	return &Dataset{
		inputs:  inputs,
		labels:  append([]int(nil), labels...),
		classes: numClasses,
	}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return d.inputs.Shape()[0]
}

// Features returns the input dimensionality.
func (d *Dataset) Features() int {
	return d.inputs.Shape()[1]
}

// Classes returns the number of classes.
func (d *Dataset) Classes() int {
	return d.classes
}

// Inputs returns the full input tensor.
func (d *Dataset) Inputs() *tensor.Dense {
	return d.inputs
}

// Labels returns the label slice.
func (d *Dataset) Labels() []int {
	return d.labels
}

// Batch is one mini-batch of samples.
type Batch struct {
	Inputs *tensor.Dense // [batch_size, features]
	Labels []int
}

// Batches splits the dataset into mini-batches of at most batchSize
// samples. When rng is non-nil the sample order is shuffled first;
// otherwise batches follow dataset order. The final batch may be smaller.
func (d *Dataset) Batches(batchSize int, rng *rand.Rand) []Batch {
	if batchSize <= 0 {
		panic(fmt.Sprintf("batch size must be positive, got %d", batchSize))
	}

	n := d.Len()
	features := d.Features()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	data := d.inputs.AsFloat32()
	batches := make([]Batch, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		size := end - start

		inputs := tensor.Zeros(tensor.Shape{size, features})
		buf := inputs.AsFloat32()
		labels := make([]int, size)
		for i, idx := range order[start:end] {
			copy(buf[i*features:(i+1)*features], data[idx*features:(idx+1)*features])
			labels[i] = d.labels[idx]
		}
		batches = append(batches, Batch{Inputs: inputs, Labels: labels})
	}
	return batches
}

// Synthetic generates a toy classification dataset of Gaussian clusters,
// one cluster per class, spread around a circle. Useful for smoke-testing
// training end to end without external data.
func Synthetic(samples, features, classes int, rng *rand.Rand) (*Dataset, error) {
	if samples <= 0 || features < 2 || classes <= 0 {
		return nil, fmt.Errorf("invalid synthetic dataset: samples=%d features=%d classes=%d",
			samples, features, classes)
	}

	inputs := tensor.Zeros(tensor.Shape{samples, features})
	data := inputs.AsFloat32()
	labels := make([]int, samples)

	const radius = 4.0
	for i := 0; i < samples; i++ {
		class := i % classes
		labels[i] = class
		angle := 2 * math.Pi * float64(class) / float64(classes)

		row := data[i*features : (i+1)*features]
		row[0] = float32(radius*math.Cos(angle) + rng.NormFloat64())
		row[1] = float32(radius*math.Sin(angle) + rng.NormFloat64())
		for j := 2; j < features; j++ {
			row[j] = float32(rng.NormFloat64())
		}
	}

	return New(inputs, labels, classes)
}
