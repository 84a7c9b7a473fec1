package checkpoint

import (
	"fmt"
	"time"

	"github.com/slate-ml/slate/internal/tensor"
)

const slateVersion = "0.1.0" // Current Slate version

// Format constants.
const (
	MagicBytes      = "SLTE"
	FormatVersion   = 1    // v1: fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Flags for the .slate format.
const (
	FlagHalfPrecision uint32 = 1 << 0 // bit 0: parameters stored as float16
	FlagHasOptimizer  uint32 = 1 << 1 // bit 1: optimizer state included
	FlagHasMetadata   uint32 = 1 << 2 // bit 2: custom metadata included
)

// optimizerPrefix namespaces optimizer state tensors in the file so they
// never collide with model parameters.
const optimizerPrefix = "optimizer."

// Architecture describes a fully connected classifier: the dimensionality
// of its input, the number of output classes, and the hidden layer widths
// in forward-pass order.
type Architecture struct {
	InputSize   int   `json:"input_size"`
	OutputSize  int   `json:"output_size"`
	HiddenSizes []int `json:"hidden_sizes"`
}

// Validate checks that all sizes are positive and at least one hidden
// layer is declared.
func (a Architecture) Validate() error {
	if a.InputSize <= 0 {
		return fmt.Errorf("input size must be positive, got %d", a.InputSize)
	}
	if a.OutputSize <= 0 {
		return fmt.Errorf("output size must be positive, got %d", a.OutputSize)
	}
	if len(a.HiddenSizes) == 0 {
		return fmt.Errorf("at least one hidden layer is required")
	}
	for i, h := range a.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("hidden layer %d size must be positive, got %d", i, h)
		}
	}
	return nil
}

// ParameterShapes returns the expected shape of every parameter under the
// fixed layer-construction rule: linear layer i maps from the previous
// width to HiddenSizes[i], and the final layer maps from the last hidden
// width to OutputSize. Layer i contributes "fc{i}.weight" with shape
// [width_i, width_{i-1}] and "fc{i}.bias" with shape [width_i].
func (a Architecture) ParameterShapes() map[string]tensor.Shape {
	shapes := make(map[string]tensor.Shape, 2*(len(a.HiddenSizes)+1))

	prev := a.InputSize
	widths := append(append([]int(nil), a.HiddenSizes...), a.OutputSize)
	for i, w := range widths {
		shapes[fmt.Sprintf("fc%d.weight", i)] = tensor.Shape{w, prev}
		shapes[fmt.Sprintf("fc%d.bias", i)] = tensor.Shape{w}
		prev = w
	}
	return shapes
}

// TrainingMeta carries training-state information for checkpoints that are
// meant to resume a run. It is advisory: loading for inference ignores it.
type TrainingMeta struct {
	Epoch           int            `json:"epoch"`            // Training epoch number
	Step            int64          `json:"step"`             // Training step number
	Loss            float64        `json:"loss"`             // Loss value at checkpoint
	OptimizerType   string         `json:"optimizer_type"`   // Optimizer type ("SGD", "Adam")
	OptimizerConfig map[string]any `json:"optimizer_config"` // Optimizer hyperparameters
}

// TensorMeta describes one tensor in the .slate file.
type TensorMeta struct {
	Name   string `json:"name"`   // Qualified name (e.g., "fc0.weight")
	DType  string `json:"dtype"`  // Element type (e.g., "float32", "float16")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Header is the JSON header of a .slate file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	SlateVersion  string            `json:"slate_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Arch          *Architecture     `json:"architecture"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Training      *TrainingMeta     `json:"training,omitempty"`
}
