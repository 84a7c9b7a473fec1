package checkpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slate-ml/slate/internal/tensor"
)

// Common errors.
var (
	ErrNotFound           = errors.New("checkpoint file not found")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrTooManyTensors     = errors.New("too many tensors in file")
	ErrInvalidTensorName  = errors.New("invalid tensor name")
	ErrOffsetOverlap      = errors.New("tensor offsets overlap")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrMissingField       = errors.New("record is missing a required field")
	ErrInconsistentRecord = errors.New("record contents inconsistent with declared architecture")
)

// ValidationError reports a record whose declared parameter shapes are
// inconsistent with its architecture at save time. Nothing is written when
// a ValidationError occurs.
type ValidationError struct {
	Name     string       // Parameter name, empty for architecture-level problems
	Expected tensor.Shape // Shape required by the architecture, nil if the key is unexpected
	Actual   tensor.Shape // Shape supplied by the caller, nil if the key is missing
	Reason   string       // Human-readable detail
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Name == "":
		return fmt.Sprintf("invalid record: %s", e.Reason)
	case e.Expected == nil:
		return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
	case e.Actual == nil:
		return fmt.Sprintf("parameter %q: %s (expected shape %v)", e.Name, e.Reason, e.Expected)
	default:
		return fmt.Sprintf("parameter %q: %s (expected shape %v, got %v)",
			e.Name, e.Reason, e.Expected, e.Actual)
	}
}

// CorruptRecordError reports a file that cannot be parsed as a .slate
// record or is missing required fields. It wraps a detail error such as
// ErrInvalidMagic or ErrChecksumMismatch for programmatic inspection.
type CorruptRecordError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt checkpoint %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying detail error.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// Mismatch describes one parameter whose shape in the record differs from
// the freshly constructed model's expectation. A nil Expected means the
// record carries a parameter the model does not have; a nil Actual means
// the model expects a parameter the record is missing.
type Mismatch struct {
	Name     string
	Expected tensor.Shape // Shape the reconstructed model expects
	Actual   tensor.Shape // Shape found in the record
}

// String formats the mismatch for diagnostics.
func (m Mismatch) String() string {
	switch {
	case m.Expected == nil:
		return fmt.Sprintf("%s: unexpected parameter with shape %v", m.Name, m.Actual)
	case m.Actual == nil:
		return fmt.Sprintf("%s: missing (model expects shape %v)", m.Name, m.Expected)
	default:
		return fmt.Sprintf("%s: model expects shape %v, record has %v", m.Name, m.Expected, m.Actual)
	}
}

// ShapeMismatchError reports every parameter that prevented a record from
// being applied to a freshly constructed model. Application is
// all-or-nothing: when this error is returned, the model was not modified.
type ShapeMismatchError struct {
	Mismatches []Mismatch // Sorted by parameter name
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("shape mismatch for %d parameter(s): %s",
		len(e.Mismatches), strings.Join(parts, "; "))
}
