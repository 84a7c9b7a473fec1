package nn

import (
	"fmt"
	"math/rand"

	"github.com/slate-ml/slate/internal/tensor"
)

// MLP is a fully connected classifier built from Linear layers with ReLU
// activations between them. The final layer produces raw logits.
//
// Architecture for hidden sizes [h0, h1, ..., hk]:
//
//	input -> Linear(input, h0) -> ReLU -> Linear(h0, h1) -> ReLU ->
//	... -> Linear(hk, output)
//
// Parameters follow a deterministic naming scheme: layer i exposes
// "fc{i}.weight" ([width_i, width_{i-1}]) and "fc{i}.bias" ([width_i]).
// This scheme is what checkpoints validate against when saving and what
// Reconstruct checks when applying a saved record to a fresh model.
type MLP struct {
	inputSize   int
	outputSize  int
	hiddenSizes []int

	layers []*Linear
	acts   []*ReLU // one per hidden layer
}

// MLPConfig configures MLP construction.
//
// Rand drives weight initialization; it is explicit so callers control
// reproducibility instead of relying on process-global state. A nil Rand
// falls back to an unseeded source.
type MLPConfig struct {
	InputSize   int
	OutputSize  int
	HiddenSizes []int
	Rand        *rand.Rand
}

// NewMLP creates a freshly initialized, untrained classifier.
//
// InputSize and OutputSize must be positive and HiddenSizes must be a
// non-empty list of positive widths.
func NewMLP(cfg MLPConfig) (*MLP, error) {
	if cfg.InputSize <= 0 {
		return nil, fmt.Errorf("input size must be positive, got %d", cfg.InputSize)
	}
	if cfg.OutputSize <= 0 {
		return nil, fmt.Errorf("output size must be positive, got %d", cfg.OutputSize)
	}
	if len(cfg.HiddenSizes) == 0 {
		return nil, fmt.Errorf("at least one hidden layer is required")
	}
	for i, h := range cfg.HiddenSizes {
		if h <= 0 {
			return nil, fmt.Errorf("hidden layer %d size must be positive, got %d", i, h)
		}
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // weight init, not security
	}

	m := &MLP{
		inputSize:   cfg.InputSize,
		outputSize:  cfg.OutputSize,
		hiddenSizes: append([]int(nil), cfg.HiddenSizes...),
	}

	prev := cfg.InputSize
	for _, h := range cfg.HiddenSizes {
		m.layers = append(m.layers, NewLinear(prev, h, rng))
		m.acts = append(m.acts, NewReLU())
		prev = h
	}
	m.layers = append(m.layers, NewLinear(prev, cfg.OutputSize, rng))

	return m, nil
}

// Forward computes class logits for a batch of inputs.
//
// Input shape: [batch_size, input_size]
// Output shape: [batch_size, output_size]
func (m *MLP) Forward(input *tensor.Dense) *tensor.Dense {
	x := input
	for i, layer := range m.layers {
		x = layer.Forward(x)
		if i < len(m.acts) {
			x = m.acts[i].Forward(x)
		}
	}
	return x
}

// Backward propagates the loss gradient through the network, accumulating
// parameter gradients. Returns the gradient with respect to the input.
func (m *MLP) Backward(grad *tensor.Dense) *tensor.Dense {
	for i := len(m.layers) - 1; i >= 0; i-- {
		if i < len(m.acts) {
			grad = m.acts[i].Backward(grad)
		}
		grad = m.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters of the network.
func (m *MLP) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range m.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Predict returns the argmax class index for each sample in the batch.
func (m *MLP) Predict(input *tensor.Dense) []int {
	logits := m.Forward(input)
	shape := logits.Shape()
	batch, classes := shape[0], shape[1]
	data := logits.AsFloat32()

	preds := make([]int, batch)
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		preds[i] = best
	}
	return preds
}

// InputSize returns the dimensionality of the input vector.
func (m *MLP) InputSize() int {
	return m.inputSize
}

// OutputSize returns the number of output classes.
func (m *MLP) OutputSize() int {
	return m.outputSize
}

// HiddenSizes returns the hidden layer widths in forward-pass order.
func (m *MLP) HiddenSizes() []int {
	return append([]int(nil), m.hiddenSizes...)
}

// StateDict returns all parameters keyed by their qualified names
// ("fc0.weight", "fc0.bias", "fc1.weight", ...).
func (m *MLP) StateDict() map[string]*tensor.Dense {
	stateDict := make(map[string]*tensor.Dense, 2*len(m.layers))
	for i, layer := range m.layers {
		for name, t := range layer.StateDict() {
			stateDict[fmt.Sprintf("fc%d.%s", i, name)] = t
		}
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary using the
// qualified naming scheme. Every layer's weight and bias must be present
// with the exact expected shape.
func (m *MLP) LoadStateDict(stateDict map[string]*tensor.Dense) error {
	for i, layer := range m.layers {
		prefix := fmt.Sprintf("fc%d.", i)
		layerDict := make(map[string]*tensor.Dense, 2)
		for key, t := range stateDict {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				layerDict[key[len(prefix):]] = t
			}
		}
		if err := layer.LoadStateDict(layerDict); err != nil {
			return fmt.Errorf("failed to load layer fc%d: %w", i, err)
		}
	}
	return nil
}
