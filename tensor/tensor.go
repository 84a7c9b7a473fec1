// Copyright 2025 Slate ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for Slate's dense tensors.
//
// A Dense tensor is a contiguous block of typed values with a shape:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y := tensor.FromFloat32(tensor.Shape{3, 4}, data)
//	z, err := tensor.MatMul(x, y) // [2, 4]
package tensor

import (
	"github.com/slate-ml/slate/internal/tensor"
)

// DataType represents the underlying element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2×3 matrix.
type Shape = tensor.Shape

// Dense is a contiguous tensor backed by a flat byte buffer.
type Dense = tensor.Dense

// NewDense creates an uninitialized tensor of the given shape and type.
func NewDense(shape Shape, dtype DataType) (*Dense, error) {
	return tensor.NewDense(shape, dtype)
}

// Zeros creates a zero-filled Float32 tensor.
func Zeros(shape Shape) *Dense {
	return tensor.Zeros(shape)
}

// Full creates a Float32 tensor filled with the given value.
func Full(shape Shape, value float32) *Dense {
	return tensor.Full(shape, value)
}

// FromFloat32 creates a Float32 tensor from a value slice. The slice
// length must match the shape's element count.
func FromFloat32(shape Shape, values []float32) (*Dense, error) {
	return tensor.FromFloat32(shape, values)
}

// MatMul multiplies two 2D Float32 tensors: [m, k] × [k, n] → [m, n].
func MatMul(a, b *Dense) (*Dense, error) {
	return tensor.MatMul(a, b)
}

// AllClose reports whether two Float32 tensors have equal shapes and
// element-wise differences within tol.
func AllClose(a, b *Dense, tol float64) bool {
	return tensor.AllClose(a, b, tol)
}

// ParseDataType parses a dtype name like "float32".
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
