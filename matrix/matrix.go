// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
)

// Type aliases for public API

// Matrix is a 2-D column-major matrix of float32 or float64 elements.
type Matrix[T constraints.Float] = matrix.Matrix[T]

// Device identifies where a matrix's storage lives.
type Device = matrix.Device

// Device constants.
const (
	CPU Device = matrix.CPU
	GPU Device = matrix.GPU
)

// Format is a matrix's storage discriminator.
type Format = matrix.Format

// Format constants.
const (
	Dense          Format = matrix.Dense
	SparseBlockCol Format = matrix.SparseBlockCol
)

// New returns a zeroed rows×cols matrix on the given device.
func New[T constraints.Float](rows, cols int, device Device) *Matrix[T] {
	return matrix.New[T](rows, cols, device)
}

// Ones returns a rows×cols matrix of ones.
func Ones[T constraints.Float](rows, cols int, device Device) *Matrix[T] {
	return matrix.Ones[T](rows, cols, device)
}

// FromRows builds a matrix from row-major literal data.
func FromRows[T constraints.Float](rows [][]T, device Device) *Matrix[T] {
	return matrix.FromRows(rows, device)
}

// InnerProductOfMatrices returns the sum of the elementwise product of two
// same-shaped matrices.
func InnerProductOfMatrices[T constraints.Float](a, b *Matrix[T]) T {
	return matrix.InnerProductOfMatrices(a, b)
}

// MultiplyAndWeightedAdd computes c = alpha*op(a)·op(b) + beta*c, where op
// optionally transposes its operand.
func MultiplyAndWeightedAdd[T constraints.Float](alpha T, a *Matrix[T], transA bool, b *Matrix[T], transB bool, beta T, c *Matrix[T]) {
	matrix.MultiplyAndWeightedAdd(alpha, a, transA, b, transB, beta, c)
}

// MultiplyAndAdd computes c += op(a)·op(b).
func MultiplyAndAdd[T constraints.Float](a *Matrix[T], transA bool, b *Matrix[T], transB bool, c *Matrix[T]) {
	matrix.MultiplyAndAdd(a, transA, b, transB, c)
}
