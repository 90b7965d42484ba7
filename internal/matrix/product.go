// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

func opDims[T constraints.Float](a *Matrix[T], trans bool) (rows, cols int) {
	if trans {
		return a.cols, a.rows
	}
	return a.rows, a.cols
}

func opAt[T constraints.Float](a *Matrix[T], trans bool, i, j int) T {
	if trans {
		i, j = j, i
	}
	return a.data[j*a.rows+i]
}

// MultiplyAndWeightedAdd computes c = alpha * op(a)·op(b) + beta * c, where
// op optionally transposes its operand. This is the single matrix-product
// kernel every product in the catalogue reduces to.
func MultiplyAndWeightedAdd[T constraints.Float](alpha T, a *Matrix[T], transA bool, b *Matrix[T], transB bool, beta T, c *Matrix[T]) {
	ar, ac := opDims(a, transA)
	br, bc := opDims(b, transB)
	if ac != br {
		exceptions.Panicf("matrix.MultiplyAndWeightedAdd: inner dimensions do not match (%dx%d · %dx%d)", ar, ac, br, bc)
	}
	if c.rows != ar || c.cols != bc {
		exceptions.Panicf("matrix.MultiplyAndWeightedAdd: result is %dx%d, want %dx%d", c.rows, c.cols, ar, bc)
	}
	for j := 0; j < bc; j++ {
		for i := 0; i < ar; i++ {
			var s T
			for k := 0; k < ac; k++ {
				s += opAt(a, transA, i, k) * opAt(b, transB, k, j)
			}
			c.data[j*c.rows+i] = alpha*s + beta*c.data[j*c.rows+i]
		}
	}
}

// MultiplyAndAdd computes c += op(a)·op(b).
func MultiplyAndAdd[T constraints.Float](a *Matrix[T], transA bool, b *Matrix[T], transB bool, c *Matrix[T]) {
	MultiplyAndWeightedAdd(1, a, transA, b, transB, 1, c)
}

// AssignProductOf sets m = op(a)·op(b), resizing m if it is not a view.
func (m *Matrix[T]) AssignProductOf(a *Matrix[T], transA bool, b *Matrix[T], transB bool) {
	ar, _ := opDims(a, transA)
	_, bc := opDims(b, transB)
	m.requireDims(ar, bc, "AssignProductOf")
	MultiplyAndWeightedAdd(1, a, transA, b, transB, 0, m)
}

// AssignKhatriRaoProductOf sets column j of m to the Kronecker product of
// a's and b's columns j: m[i*rowsB + k, j] = a(i,j) * b(k,j). The operands
// must have the same column count; m is (rowsA*rowsB)×cols.
func (m *Matrix[T]) AssignKhatriRaoProductOf(a, b *Matrix[T]) {
	if a.cols != b.cols {
		exceptions.Panicf("matrix.AssignKhatriRaoProductOf: column counts differ (%d vs %d)", a.cols, b.cols)
	}
	m.requireDims(a.rows*b.rows, a.cols, "AssignKhatriRaoProductOf")
	for j := 0; j < a.cols; j++ {
		for i := 0; i < a.rows; i++ {
			av := a.data[j*a.rows+i]
			for k := 0; k < b.rows; k++ {
				m.data[j*m.rows+i*b.rows+k] = av * b.data[j*b.rows+k]
			}
		}
	}
}

// AddColumnReshapeProductOf accumulates the Khatri-Rao backward step.
// Each column j of a (length rowsOther*rowsSelf in the order produced by
// AssignKhatriRaoProductOf) is viewed as a matrix M with b's row count on one
// axis and m's on the other, and m's column j accumulates the product of M
// (or its transpose) with b's column j:
//
//	transposeAColumn false: m(i,j) += Σ_k a[i*rowsB + k, j] * b(k,j)
//	transposeAColumn true:  m(k,j) += Σ_i a[i*rowsM + k, j] * b(i,j)
//
// The false form recovers the first factor's gradient, the true form the
// second factor's.
func (m *Matrix[T]) AddColumnReshapeProductOf(a, b *Matrix[T], transposeAColumn bool) {
	if a.cols != b.cols || a.cols != m.cols {
		exceptions.Panicf("matrix.AddColumnReshapeProductOf: column counts differ (%d, %d, %d)", a.cols, b.cols, m.cols)
	}
	if a.rows != m.rows*b.rows {
		exceptions.Panicf("matrix.AddColumnReshapeProductOf: %d rows cannot reshape against %dx%d", a.rows, m.rows, b.rows)
	}
	for j := 0; j < m.cols; j++ {
		if !transposeAColumn {
			for i := 0; i < m.rows; i++ {
				var s T
				for k := 0; k < b.rows; k++ {
					s += a.data[j*a.rows+i*b.rows+k] * b.data[j*b.rows+k]
				}
				m.data[j*m.rows+i] += s
			}
		} else {
			for k := 0; k < m.rows; k++ {
				var s T
				for i := 0; i < b.rows; i++ {
					s += a.data[j*a.rows+i*m.rows+k] * b.data[j*b.rows+i]
				}
				m.data[j*m.rows+k] += s
			}
		}
	}
}
