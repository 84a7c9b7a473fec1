package tensor

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/x448/float16"
)

// Dense is a densely stored tensor backed by a contiguous byte buffer in
// row-major order.
//
// Dense carries runtime type information so that serialized checkpoints can
// hold tensors of mixed precision, but all training math in the toolkit runs
// on Float32 tensors.
type Dense struct {
	shape Shape
	dtype DataType
	data  []byte
}

// NewDense creates a zero-filled tensor with the given shape and type.
func NewDense(shape Shape, dtype DataType) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &Dense{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]byte, shape.NumElements()*dtype.Size()),
	}, nil
}

// Zeros creates a zero-filled Float32 tensor.
//
// Panics on an invalid shape; use NewDense when the shape comes from
// untrusted input.
func Zeros(shape Shape) *Dense {
	t, err := NewDense(shape, Float32)
	if err != nil {
		panic(err)
	}
	return t
}

// Full creates a Float32 tensor filled with the given value.
func Full(shape Shape, value float32) *Dense {
	t := Zeros(shape)
	data := t.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return t
}

// FromFloat32 creates a Float32 tensor from a value slice.
//
// The values are copied; the caller keeps ownership of the slice.
func FromFloat32(shape Shape, values []float32) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("shape %v requires %d elements, got %d",
			shape, shape.NumElements(), len(values))
	}

	t := Zeros(shape)
	copy(t.AsFloat32(), values)
	return t, nil
}

// Shape returns the tensor's shape.
func (d *Dense) Shape() Shape {
	return d.shape
}

// DType returns the tensor's data type.
func (d *Dense) DType() DataType {
	return d.dtype
}

// NumElements returns the total number of elements.
func (d *Dense) NumElements() int {
	return d.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (d *Dense) ByteSize() int {
	return d.NumElements() * d.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (d *Dense) Data() []byte {
	return d.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (d *Dense) AsFloat32() []float32 {
	if d.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", d.dtype))
	}
	if len(d.data) == 0 {
		return nil
	}
	//nolint:gosec // Zero-copy reinterpretation, length bounded by NumElements.
	return unsafe.Slice((*float32)(unsafe.Pointer(&d.data[0])), d.NumElements())
}

// Clone returns a deep copy of the tensor.
func (d *Dense) Clone() *Dense {
	clone := &Dense{
		shape: d.shape.Clone(),
		dtype: d.dtype,
		data:  make([]byte, len(d.data)),
	}
	copy(clone.data, d.data)
	return clone
}

// Convert returns a copy of the tensor converted to the target data type.
//
// Supported conversions are Float32 <-> Float16 and Float32 <-> Float64.
// Converting to the tensor's own type returns a deep copy. Float16 uses
// IEEE 754 half precision with round-to-nearest-even.
func (d *Dense) Convert(target DataType) (*Dense, error) {
	if target == d.dtype {
		return d.Clone(), nil
	}

	out, err := NewDense(d.shape, target)
	if err != nil {
		return nil, err
	}

	switch {
	case d.dtype == Float32 && target == Float16:
		src := d.AsFloat32()
		for i, v := range src {
			bits := float16.Fromfloat32(v).Bits()
			out.data[2*i] = byte(bits)
			out.data[2*i+1] = byte(bits >> 8)
		}
	case d.dtype == Float16 && target == Float32:
		dst := out.AsFloat32()
		for i := range dst {
			bits := uint16(d.data[2*i]) | uint16(d.data[2*i+1])<<8
			dst[i] = float16.Frombits(bits).Float32()
		}
	case d.dtype == Float32 && target == Float64:
		src := d.AsFloat32()
		for i, v := range src {
			putFloat64(out.data[8*i:], float64(v))
		}
	case d.dtype == Float64 && target == Float32:
		dst := out.AsFloat32()
		for i := range dst {
			dst[i] = float32(getFloat64(d.data[8*i:]))
		}
	default:
		return nil, fmt.Errorf("unsupported conversion: %s to %s", d.dtype, target)
	}

	return out, nil
}

// AllClose reports whether two Float32 tensors have equal shapes and
// element-wise equal values within the given absolute tolerance.
func AllClose(a, b *Dense, tol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	av, bv := a.AsFloat32(), b.AsFloat32()
	for i := range av {
		if math.Abs(float64(av[i])-float64(bv[i])) > tol {
			return false
		}
	}
	return true
}

func putFloat64(b []byte, v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}

func getFloat64(b []byte) float64 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(b[i]) << (8 * i)
	}
	return math.Float64frombits(bits)
}
