package nn

import (
	"fmt"
	"math/rand"

	"github.com/slate-ml/slate/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	input *tensor.Dense // Cached Forward input, consumed by Backward
}

// NewLinear creates a new Linear layer.
//
// The random source drives weight initialization and is passed explicitly
// for reproducibility.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng))
	bias := NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *tensor.Dense) *tensor.Dense {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	l.input = input

	// [batch, in] @ [out, in].T = [batch, out]
	output, err := tensor.Gemm(false, true, input, l.weight.Value())
	if err != nil {
		panic(err)
	}

	// Broadcast bias across the batch dimension.
	batch := inputShape[0]
	out := output.AsFloat32()
	b := l.bias.Value().AsFloat32()
	for i := 0; i < batch; i++ {
		row := out[i*l.outFeatures : (i+1)*l.outFeatures]
		for j := range row {
			row[j] += b[j]
		}
	}

	return output
}

// Backward propagates gradients through the layer.
//
// Given dL/dy with shape [batch_size, out_features], accumulates
//
//	dL/dW = dy.T @ x    ([out_features, in_features])
//	dL/db = sum over batch of dy
//
// and returns dL/dx = dy @ W with shape [batch_size, in_features].
func (l *Linear) Backward(grad *tensor.Dense) *tensor.Dense {
	if l.input == nil {
		panic("Linear.Backward: called before Forward")
	}
	gradShape := grad.Shape()
	if len(gradShape) != 2 || gradShape[0] != l.input.Shape()[0] || gradShape[1] != l.outFeatures {
		panic(fmt.Sprintf("Linear.Backward: expected gradient shape [%d %d], got %v",
			l.input.Shape()[0], l.outFeatures, gradShape))
	}

	// dW = dy.T @ x
	dW, err := tensor.Gemm(true, false, grad, l.input)
	if err != nil {
		panic(err)
	}
	l.weight.AccumGrad(dW)

	// db = column sums of dy
	db := tensor.Zeros(tensor.Shape{l.outFeatures})
	dbData := db.AsFloat32()
	gradData := grad.AsFloat32()
	batch := gradShape[0]
	for i := 0; i < batch; i++ {
		row := gradData[i*l.outFeatures : (i+1)*l.outFeatures]
		for j, v := range row {
			dbData[j] += v
		}
	}
	l.bias.AccumGrad(db)

	// dx = dy @ W
	dx, err := tensor.MatMul(grad, l.weight.Value())
	if err != nil {
		panic(err)
	}
	return dx
}

// Parameters returns the trainable parameters of this layer.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to tensors.
func (l *Linear) StateDict() map[string]*tensor.Dense {
	return map[string]*tensor.Dense{
		"weight": l.weight.Value(),
		"bias":   l.bias.Value(),
	}
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.Dense) error {
	weight, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	expectedWeightShape := tensor.Shape{l.outFeatures, l.inFeatures}
	if !weight.Shape().Equal(expectedWeightShape) {
		return fmt.Errorf("weight shape mismatch: expected %v, got %v",
			expectedWeightShape, weight.Shape())
	}
	if weight.DType() != tensor.Float32 {
		return fmt.Errorf("weight dtype mismatch: expected float32, got %v", weight.DType())
	}

	bias, ok := stateDict["bias"]
	if !ok {
		return fmt.Errorf("missing bias in state dict")
	}
	expectedBiasShape := tensor.Shape{l.outFeatures}
	if !bias.Shape().Equal(expectedBiasShape) {
		return fmt.Errorf("bias shape mismatch: expected %v, got %v",
			expectedBiasShape, bias.Shape())
	}
	if bias.DType() != tensor.Float32 {
		return fmt.Errorf("bias dtype mismatch: expected float32, got %v", bias.DType())
	}

	copy(l.weight.Value().AsFloat32(), weight.AsFloat32())
	copy(l.bias.Value().AsFloat32(), bias.AsFloat32())
	return nil
}
