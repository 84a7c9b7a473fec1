package checkpoint

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection when reading untrusted files.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum JSON header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// validateTensorName rejects names that could smuggle paths or control
// bytes into diagnostics. Qualified names use dots ("fc0.weight"), never
// path separators.
func validateTensorName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
	}
	if len(name) > MaxTensorNameLen {
		return fmt.Errorf("%w: %q length %d > max %d", ErrInvalidTensorName, name[:64], len(name), MaxTensorNameLen)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q contains '..'", ErrInvalidTensorName, name)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidTensorName, name)
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: name contains a null byte", ErrInvalidTensorName)
	}
	return nil
}

// validateTensorOffsets checks for overlapping tensor regions and
// out-of-bounds access. Malformed files must not be able to alias one
// tensor's bytes into another or read past the data section.
func validateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyTensors, len(tensors), MaxTensorCount)
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return fmt.Errorf("%w: tensor %q offset=%d size=%d", ErrOutOfBounds, t.Name, t.Offset, t.Size)
		}
		if t.Offset+t.Size > dataSize {
			return fmt.Errorf("%w: tensor %q offset %d + size %d > data size %d",
				ErrOutOfBounds, t.Name, t.Offset, t.Size, dataSize)
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return fmt.Errorf("%w: tensors %q and %q", ErrOffsetOverlap, t.Name, next.Name)
			}
		}
	}
	return nil
}

// validateHeader performs the structural checks a freshly parsed header
// must pass before any tensor data is interpreted.
func validateHeader(h *Header, dataSize int64) error {
	if h.Arch == nil {
		return fmt.Errorf("%w: architecture", ErrMissingField)
	}
	if err := h.Arch.Validate(); err != nil {
		return fmt.Errorf("%w: invalid architecture: %v", ErrMissingField, err)
	}
	if len(h.Tensors) == 0 {
		return fmt.Errorf("%w: tensor table", ErrMissingField)
	}
	for _, t := range h.Tensors {
		if err := validateTensorName(t.Name); err != nil {
			return err
		}
	}
	return validateTensorOffsets(h.Tensors, dataSize)
}
