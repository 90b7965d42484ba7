// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"math"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// indexer maps a destination coordinate to the operand coordinate feeding it.
// Operands smaller than the destination broadcast: a 1×1 scalar feeds every
// element, an N×1 column vector broadcasts across columns, a 1×M row vector
// broadcasts across rows.
func indexer[T constraints.Float](op *Matrix[T], dstRows, dstCols int) func(i, j int) T {
	switch {
	case op.rows == dstRows && op.cols == dstCols:
		return func(i, j int) T { return op.data[j*op.rows+i] }
	case op.rows == 1 && op.cols == 1:
		return func(i, j int) T { return op.data[0] }
	case op.rows == dstRows && op.cols == 1:
		return func(i, j int) T { return op.data[i] }
	case op.rows == 1 && op.cols == dstCols:
		return func(i, j int) T { return op.data[j] }
	default:
		exceptions.Panicf("matrix: operand %dx%d does not broadcast to %dx%d", op.rows, op.cols, dstRows, dstCols)
		return nil
	}
}

func (m *Matrix[T]) assignBinary(a, b *Matrix[T], f func(x, y T) T) {
	m.requireDims(max(a.rows, b.rows), max(a.cols, b.cols), "assignBinary")
	ia := indexer(a, m.rows, m.cols)
	ib := indexer(b, m.rows, m.cols)
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			m.data[j*m.rows+i] = f(ia(i, j), ib(i, j))
		}
	}
}

func (m *Matrix[T]) accumBinary(other *Matrix[T], f func(x, y T) T) {
	io := indexer(other, m.rows, m.cols)
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			k := j*m.rows + i
			m.data[k] = f(m.data[k], io(i, j))
		}
	}
}

// AssignSumOf sets m = a + b. Either operand may be a broadcasting scalar,
// column vector, or row vector relative to m's dimensions.
func (m *Matrix[T]) AssignSumOf(a, b *Matrix[T]) {
	m.assignBinary(a, b, func(x, y T) T { return x + y })
}

// AssignDifferenceOf sets m = a - b, with the same broadcasting as AssignSumOf.
func (m *Matrix[T]) AssignDifferenceOf(a, b *Matrix[T]) {
	m.assignBinary(a, b, func(x, y T) T { return x - y })
}

// AssignElementProductOf sets m = a ∘ b, with the same broadcasting.
func (m *Matrix[T]) AssignElementProductOf(a, b *Matrix[T]) {
	m.assignBinary(a, b, func(x, y T) T { return x * y })
}

// Add accumulates m += other, broadcasting other if needed.
func (m *Matrix[T]) Add(other *Matrix[T]) {
	m.accumBinary(other, func(x, y T) T { return x + y })
}

// Sub accumulates m -= other, broadcasting other if needed.
func (m *Matrix[T]) Sub(other *Matrix[T]) {
	m.accumBinary(other, func(x, y T) T { return x - y })
}

// AddScaled accumulates m += alpha * other, broadcasting other if needed.
func (m *Matrix[T]) AddScaled(alpha T, other *Matrix[T]) {
	m.accumBinary(other, func(x, y T) T { return x + alpha*y })
}

// AddElementProductOf accumulates m += a ∘ b.
func (m *Matrix[T]) AddElementProductOf(a, b *Matrix[T]) {
	ia := indexer(a, m.rows, m.cols)
	ib := indexer(b, m.rows, m.cols)
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			m.data[j*m.rows+i] += ia(i, j) * ib(i, j)
		}
	}
}

// ElementMultiplyWith scales m ∘= other, broadcasting other if needed.
func (m *Matrix[T]) ElementMultiplyWith(other *Matrix[T]) {
	m.accumBinary(other, func(x, y T) T { return x * y })
}

// AddScalarValue accumulates m += v elementwise.
func (m *Matrix[T]) AddScalarValue(v T) {
	for i := range m.data {
		m.data[i] += v
	}
}

// Scale multiplies every element by alpha.
func (m *Matrix[T]) Scale(alpha T) {
	for i := range m.data {
		m.data[i] *= alpha
	}
}

// AssignScaledOf sets m = alpha * a.
func (m *Matrix[T]) AssignScaledOf(alpha T, a *Matrix[T]) {
	m.requireDims(a.rows, a.cols, "AssignScaledOf")
	for i := range m.data {
		m.data[i] = alpha * a.data[i]
	}
}

// RowElementMultiplyWith scales each column j of m by row(0, j):
// m(i,j) *= row(0,j). The argument must be a 1×cols row vector.
func (m *Matrix[T]) RowElementMultiplyWith(row *Matrix[T]) {
	if row.rows != 1 || row.cols != m.cols {
		exceptions.Panicf("matrix.RowElementMultiplyWith: want 1x%d row vector, got %dx%d", m.cols, row.rows, row.cols)
	}
	for j := 0; j < m.cols; j++ {
		v := row.data[j]
		for i := 0; i < m.rows; i++ {
			m.data[j*m.rows+i] *= v
		}
	}
}

// ColumnElementMultiplyWith scales each row i of m by col(i, 0):
// m(i,j) *= col(i,0). The argument must be a rows×1 column vector.
func (m *Matrix[T]) ColumnElementMultiplyWith(col *Matrix[T]) {
	if col.cols != 1 || col.rows != m.rows {
		exceptions.Panicf("matrix.ColumnElementMultiplyWith: want %dx1 column vector, got %dx%d", m.rows, col.rows, col.cols)
	}
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			m.data[j*m.rows+i] *= col.data[i]
		}
	}
}

// SumOfElements returns the sum over all elements.
func (m *Matrix[T]) SumOfElements() T {
	var s T
	for _, v := range m.data {
		s += v
	}
	return s
}

// AssignColumnSumsOf sets m (1×cols) to the per-column sums of a.
func (m *Matrix[T]) AssignColumnSumsOf(a *Matrix[T]) {
	m.requireDims(1, a.cols, "AssignColumnSumsOf")
	for j := 0; j < a.cols; j++ {
		var s T
		for i := 0; i < a.rows; i++ {
			s += a.data[j*a.rows+i]
		}
		m.data[j] = s
	}
}

// AssignInnerProductOf computes per-vector dot products of a and b, which
// must have identical dimensions. With isColWise true the result is a 1×cols
// row of column dots; otherwise a rows×1 column of row dots.
func (m *Matrix[T]) AssignInnerProductOf(a, b *Matrix[T], isColWise bool) {
	if !a.SameDims(b) {
		exceptions.Panicf("matrix.AssignInnerProductOf: dimension mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	if isColWise {
		m.requireDims(1, a.cols, "AssignInnerProductOf")
		for j := 0; j < a.cols; j++ {
			var s T
			for i := 0; i < a.rows; i++ {
				s += a.data[j*a.rows+i] * b.data[j*a.rows+i]
			}
			m.data[j] = s
		}
		return
	}
	m.requireDims(a.rows, 1, "AssignInnerProductOf")
	for i := 0; i < a.rows; i++ {
		var s T
		for j := 0; j < a.cols; j++ {
			s += a.data[j*a.rows+i] * b.data[j*a.rows+i]
		}
		m.data[i] = s
	}
}

// InnerProductOfMatrices returns the elementwise product of a and b summed
// over all elements.
func InnerProductOfMatrices[T constraints.Float](a, b *Matrix[T]) T {
	if !a.SameDims(b) {
		exceptions.Panicf("matrix.InnerProductOfMatrices: dimension mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	var s T
	for i := range a.data {
		s += a.data[i] * b.data[i]
	}
	return s
}

// AssignVectorNorm2Of sets m to the L2 norms of a's vectors. With isColWise
// true, m is 1×cols holding per-column norms.
func (m *Matrix[T]) AssignVectorNorm2Of(a *Matrix[T], isColWise bool) {
	if !isColWise {
		exceptions.Panicf("matrix.AssignVectorNorm2Of: row-wise norms are not used by this core")
	}
	m.requireDims(1, a.cols, "AssignVectorNorm2Of")
	for j := 0; j < a.cols; j++ {
		var s T
		for i := 0; i < a.rows; i++ {
			v := a.data[j*a.rows+i]
			s += v * v
		}
		m.data[j] = T(math.Sqrt(float64(s)))
	}
}

// AssignElementInverseOf sets m = 1 / a elementwise.
func (m *Matrix[T]) AssignElementInverseOf(a *Matrix[T]) {
	m.requireDims(a.rows, a.cols, "AssignElementInverseOf")
	for i := range m.data {
		m.data[i] = 1 / a.data[i]
	}
}

// AssignTransposeOf sets m = aᵗ.
func (m *Matrix[T]) AssignTransposeOf(a *Matrix[T]) {
	m.requireDims(a.cols, a.rows, "AssignTransposeOf")
	for j := 0; j < a.cols; j++ {
		for i := 0; i < a.rows; i++ {
			m.data[i*m.rows+j] = a.data[j*a.rows+i]
		}
	}
}

// AddTransposeOf accumulates m += aᵗ.
func (m *Matrix[T]) AddTransposeOf(a *Matrix[T]) {
	if m.rows != a.cols || m.cols != a.rows {
		exceptions.Panicf("matrix.AddTransposeOf: %dx%d cannot take the transpose of %dx%d", m.rows, m.cols, a.rows, a.cols)
	}
	for j := 0; j < a.cols; j++ {
		for i := 0; i < a.rows; i++ {
			m.data[i*m.rows+j] += a.data[j*a.rows+i]
		}
	}
}

// AssignDiagonalValuesTo extracts the cycled diagonal run of m into dst,
// a 1×cols row vector: dst(0,j) = m(j mod rows, j).
func (m *Matrix[T]) AssignDiagonalValuesTo(dst *Matrix[T]) {
	dst.requireDims(1, m.cols, "AssignDiagonalValuesTo")
	for j := 0; j < m.cols; j++ {
		dst.data[j] = m.data[j*m.rows+j%m.rows]
	}
}

// SetDiagonalValue scatters the 1×cols row vector diag onto m's cycled
// diagonal: m(j mod rows, j) = diag(0,j). Other elements are untouched.
func (m *Matrix[T]) SetDiagonalValue(diag *Matrix[T]) {
	if diag.rows != 1 || diag.cols != m.cols {
		exceptions.Panicf("matrix.SetDiagonalValue: want 1x%d diagonal, got %dx%d", m.cols, diag.rows, diag.cols)
	}
	for j := 0; j < m.cols; j++ {
		m.data[j*m.rows+j%m.rows] = diag.data[j]
	}
}

func (m *Matrix[T]) requireDims(rows, cols int, op string) {
	if m.rows == rows && m.cols == cols {
		return
	}
	if m.view {
		exceptions.Panicf("matrix.%s: view is %dx%d, want %dx%d", op, m.rows, m.cols, rows, cols)
	}
	m.Resize(rows, cols)
}
