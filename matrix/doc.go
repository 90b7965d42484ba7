// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the public API for the 2-D column-major matrix
// primitive underlying the computation graph.
//
// A Matrix[T] stores float32 or float64 elements column by column, so a
// column slice is a contiguous zero-copy view. The package exposes the
// kernel set the graph operations are built on: broadcasting elementwise
// arithmetic, matrix products with optional per-operand transposition,
// column-wise inner products and norms, Khatri-Rao products, and the
// shifted circular products used by negative sampling.
//
// Example:
//
//	a := matrix.FromRows([][]float64{{1, 2}, {3, 4}}, matrix.CPU)
//	b := matrix.New[float64](0, 0, matrix.CPU)
//	b.AssignTransposeOf(a)
package matrix
