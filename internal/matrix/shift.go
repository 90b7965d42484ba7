// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import "github.com/gomlx/exceptions"

// Shifted column-circular kernels backing the negative-sampling similarity
// op. Row 0 always pairs column j with column j; row m >= 1 pairs column j
// with column (j + shift + m - 1) mod cols, the "negative" pairings.

// AssignElementProductOfWithShiftNeg fills m ((negNumber+1)×cols) with
// products of the row vectors a and b under the circular pairing scheme:
//
//	m(0, j) = a(0,j) * b(0,j)
//	m(r, j) = a(0,j) * b(0, (j+shift+r-1) mod cols)   for r >= 1
func (m *Matrix[T]) AssignElementProductOfWithShiftNeg(a, b *Matrix[T], shift, negNumber int) {
	if a.rows != 1 || b.rows != 1 || a.cols != b.cols {
		exceptions.Panicf("matrix.AssignElementProductOfWithShiftNeg: want matching row vectors, got %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	n := a.cols
	m.requireDims(negNumber+1, n, "AssignElementProductOfWithShiftNeg")
	for j := 0; j < n; j++ {
		m.data[j*m.rows] = a.data[j] * b.data[j]
		for r := 1; r <= negNumber; r++ {
			m.data[j*m.rows+r] = a.data[j] * b.data[(j+shift+r-1)%n]
		}
	}
}

// AssignInnerProductOfWithShiftNeg fills m ((negNumber+1)×cols) with column
// dot products of a and b under the same circular pairing scheme:
//
//	m(0, j) = a[:,j] · b[:,j]
//	m(r, j) = a[:,j] · b[:, (j+shift+r-1) mod cols]   for r >= 1
func (m *Matrix[T]) AssignInnerProductOfWithShiftNeg(a, b *Matrix[T], isColWise bool, shift, negNumber int) {
	if !isColWise {
		exceptions.Panicf("matrix.AssignInnerProductOfWithShiftNeg: only column-wise products are defined")
	}
	if !a.SameDims(b) {
		exceptions.Panicf("matrix.AssignInnerProductOfWithShiftNeg: dimension mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	n := a.cols
	m.requireDims(negNumber+1, n, "AssignInnerProductOfWithShiftNeg")
	for j := 0; j < n; j++ {
		for r := 0; r <= negNumber; r++ {
			jb := j
			if r >= 1 {
				jb = (j + shift + r - 1) % n
			}
			var s T
			for i := 0; i < a.rows; i++ {
				s += a.data[j*a.rows+i] * b.data[jb*a.rows+i]
			}
			m.data[j*m.rows+r] = s
		}
	}
}
