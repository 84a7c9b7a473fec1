package nn

import (
	"fmt"
	"math"

	"github.com/slate-ml/slate/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class
// classification.
//
// The implementation uses the log-sum-exp trick for numerical stability:
//
//	loss = mean over batch of -(logits[target] - logsumexp(logits))
//
// Backward produces the well-known closed form
//
//	dL/dlogits = (softmax(logits) - onehot(target)) / batch_size
//
// The loss expects raw logits (unnormalized scores); no softmax layer should
// precede it.
type CrossEntropyLoss struct {
	probs  *tensor.Dense // softmax(logits), cached for Backward
	labels []int
}

// NewCrossEntropyLoss creates a new cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy over the batch.
//
// logits: [batch_size, num_classes], labels: class index per sample.
func (c *CrossEntropyLoss) Forward(logits *tensor.Dense, labels []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss: expected 2D logits, got shape %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("CrossEntropyLoss: %d labels for batch of %d", len(labels), batch))
	}

	c.probs = tensor.Zeros(shape)
	c.labels = labels
	probs := c.probs.AsFloat32()
	data := logits.AsFloat32()

	var total float64
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		target := labels[i]
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("CrossEntropyLoss: label %d out of range [0, %d)", target, classes))
		}

		// logsumexp with max subtraction to avoid overflow.
		maxLogit := row[0]
		for _, v := range row[1:] {
			if v > maxLogit {
				maxLogit = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxLogit))
		}
		logSumExp := float64(maxLogit) + math.Log(sumExp)

		pRow := probs[i*classes : (i+1)*classes]
		for j, v := range row {
			pRow[j] = float32(math.Exp(float64(v) - logSumExp))
		}

		total += logSumExp - float64(row[target])
	}

	return float32(total / float64(batch))
}

// Backward returns dL/dlogits with shape [batch_size, num_classes].
func (c *CrossEntropyLoss) Backward() *tensor.Dense {
	if c.probs == nil {
		panic("CrossEntropyLoss.Backward: called before Forward")
	}
	shape := c.probs.Shape()
	batch, classes := shape[0], shape[1]

	grad := c.probs.Clone()
	data := grad.AsFloat32()
	inv := 1.0 / float32(batch)
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		row[c.labels[i]] -= 1
		for j := range row {
			row[j] *= inv
		}
	}
	return grad
}

// MSELoss computes mean squared error: mean((pred - target)^2).
//
// Used for regression targets; classification goes through
// CrossEntropyLoss.
type MSELoss struct {
	diff *tensor.Dense // pred - target
}

// NewMSELoss creates a new mean-squared-error criterion.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the mean squared error over all elements.
func (m *MSELoss) Forward(pred, target *tensor.Dense) float32 {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("MSELoss: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}

	m.diff = pred.Clone()
	diff := m.diff.AsFloat32()
	tgt := target.AsFloat32()
	var total float64
	for i := range diff {
		diff[i] -= tgt[i]
		total += float64(diff[i]) * float64(diff[i])
	}
	return float32(total / float64(len(diff)))
}

// Backward returns dL/dpred = 2 * (pred - target) / n.
func (m *MSELoss) Backward() *tensor.Dense {
	if m.diff == nil {
		panic("MSELoss.Backward: called before Forward")
	}
	grad := m.diff.Clone()
	data := grad.AsFloat32()
	scale := 2.0 / float32(len(data))
	for i := range data {
		data[i] *= scale
	}
	return grad
}
