package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MatMul computes the matrix product a @ b for 2-D Float32 tensors.
//
// Shapes: [m, k] @ [k, n] -> [m, n].
func MatMul(a, b *Dense) (*Dense, error) {
	return Gemm(false, false, a, b)
}

// Gemm computes op(a) @ op(b) for 2-D Float32 tensors, where op(x) is x or
// its transpose depending on the corresponding flag. The heavy lifting is
// delegated to gonum's single-precision BLAS.
func Gemm(transA, transB bool, a, b *Dense) (*Dense, error) {
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, fmt.Errorf("matmul requires 2-D tensors, got %v and %v", a.Shape(), b.Shape())
	}
	if a.DType() != Float32 || b.DType() != Float32 {
		return nil, fmt.Errorf("matmul requires float32 tensors, got %s and %s", a.DType(), b.DType())
	}

	m, ka := a.Shape()[0], a.Shape()[1]
	ta := blas.NoTrans
	if transA {
		m, ka = ka, m
		ta = blas.Trans
	}

	kb, n := b.Shape()[0], b.Shape()[1]
	tb := blas.NoTrans
	if transB {
		kb, n = n, kb
		tb = blas.Trans
	}

	if ka != kb {
		return nil, fmt.Errorf("matmul inner dimension mismatch: %v @ %v (transA=%v, transB=%v)",
			a.Shape(), b.Shape(), transA, transB)
	}

	c := Zeros(Shape{m, n})

	ga := blas32.General{Rows: a.Shape()[0], Cols: a.Shape()[1], Stride: a.Shape()[1], Data: a.AsFloat32()}
	gb := blas32.General{Rows: b.Shape()[0], Cols: b.Shape()[1], Stride: b.Shape()[1], Data: b.AsFloat32()}
	gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: c.AsFloat32()}

	blas32.Gemm(ta, tb, 1, ga, gb, 0, gc)

	return c, nil
}
