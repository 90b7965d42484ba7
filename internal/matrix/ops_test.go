// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSumOfBroadcast(t *testing.T) {
	a := FromRows([][]float64{
		{1, 2},
		{3, 4},
	}, CPU)

	t.Run("scalar", func(t *testing.T) {
		s := New[float64](1, 1, CPU)
		s.Set(0, 0, 10)
		out := New[float64](0, 0, CPU)
		out.AssignSumOf(a, s)
		assert.Equal(t, []float64{11, 13, 12, 14}, out.Data())
	})

	t.Run("column vector", func(t *testing.T) {
		c := FromRows([][]float64{{10}, {20}}, CPU)
		out := New[float64](0, 0, CPU)
		out.AssignSumOf(a, c)
		assert.Equal(t, []float64{11, 23, 12, 24}, out.Data())
	})

	t.Run("row vector", func(t *testing.T) {
		r := FromRows([][]float64{{10, 20}}, CPU)
		out := New[float64](0, 0, CPU)
		out.AssignSumOf(a, r)
		assert.Equal(t, []float64{11, 13, 22, 24}, out.Data())
	})

	t.Run("mismatch panics", func(t *testing.T) {
		b := New[float64](3, 2, CPU)
		out := New[float64](0, 0, CPU)
		assert.Panics(t, func() { out.AssignSumOf(a, b) })
	})
}

// Assign kernels size an empty destination to the broadcast result, the way
// a freshly pooled scratch matrix arrives.
func TestAssignElementProductSizesDestination(t *testing.T) {
	a := FromRows([][]float64{{1, 2, 3}}, CPU)
	b := FromRows([][]float64{{4, 5, 6}}, CPU)
	out := New[float64](0, 0, CPU)
	out.AssignElementProductOf(a, b)
	require.Equal(t, 1, out.Rows())
	require.Equal(t, 3, out.Cols())
	assert.Equal(t, []float64{4, 10, 18}, out.Data())
}

func TestAssignDifferenceOfBroadcast(t *testing.T) {
	a := FromRows([][]float64{
		{5, 6},
		{7, 8},
	}, CPU)
	r := FromRows([][]float64{{1, 2}}, CPU)
	out := New[float64](0, 0, CPU)
	out.AssignDifferenceOf(a, r)
	assert.Equal(t, []float64{4, 6, 4, 6}, out.Data())

	// broadcast works on either side
	out.AssignDifferenceOf(r, a)
	assert.Equal(t, []float64{-4, -6, -4, -6}, out.Data())
}

func TestElementwiseAccumulators(t *testing.T) {
	m := FromRows([][]float64{{1, 2}, {3, 4}}, CPU)
	other := FromRows([][]float64{{10, 10}, {10, 10}}, CPU)
	m.AddScaled(0.5, other)
	assert.Equal(t, []float64{6, 8, 7, 9}, m.Data())

	m.Scale(2)
	assert.Equal(t, []float64{12, 16, 14, 18}, m.Data())

	m.AddScalarValue(1)
	assert.Equal(t, []float64{13, 17, 15, 19}, m.Data())
}

func TestAddElementProductOf(t *testing.T) {
	m := New[float64](2, 2, CPU)
	a := FromRows([][]float64{{1, 2}, {3, 4}}, CPU)
	b := FromRows([][]float64{{5, 6}, {7, 8}}, CPU)
	m.AddElementProductOf(a, b)
	m.AddElementProductOf(a, b)
	assert.Equal(t, []float64{10, 42, 24, 64}, m.Data())
}

func TestRowAndColumnElementMultiply(t *testing.T) {
	m := FromRows([][]float64{{1, 2}, {3, 4}}, CPU)
	row := FromRows([][]float64{{10, 100}}, CPU)
	m.RowElementMultiplyWith(row)
	assert.Equal(t, []float64{10, 30, 200, 400}, m.Data())

	m = FromRows([][]float64{{1, 2}, {3, 4}}, CPU)
	col := FromRows([][]float64{{10}, {100}}, CPU)
	m.ColumnElementMultiplyWith(col)
	assert.Equal(t, []float64{10, 300, 20, 400}, m.Data())
}

func TestReductions(t *testing.T) {
	m := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}, CPU)
	assert.Equal(t, 21.0, m.SumOfElements())

	sums := New[float64](0, 0, CPU)
	sums.AssignColumnSumsOf(m)
	require.Equal(t, 1, sums.Rows())
	assert.Equal(t, []float64{5, 7, 9}, sums.Data())
}

func TestAssignInnerProductOf(t *testing.T) {
	a := FromRows([][]float64{{1, 2}, {3, 4}}, CPU)
	b := FromRows([][]float64{{5, 6}, {7, 8}}, CPU)

	colwise := New[float64](0, 0, CPU)
	colwise.AssignInnerProductOf(a, b, true)
	require.Equal(t, 1, colwise.Rows())
	assert.Equal(t, []float64{1*5 + 3*7, 2*6 + 4*8}, colwise.Data())

	rowwise := New[float64](0, 0, CPU)
	rowwise.AssignInnerProductOf(a, b, false)
	require.Equal(t, 1, rowwise.Cols())
	assert.Equal(t, []float64{1*5 + 2*6, 3*7 + 4*8}, rowwise.Data())

	assert.Equal(t, 1*5.0+2*6+3*7+4*8, InnerProductOfMatrices(a, b))
}

func TestAssignVectorNorm2Of(t *testing.T) {
	a := FromRows([][]float64{{3, 0}, {4, 5}}, CPU)
	norms := New[float64](0, 0, CPU)
	norms.AssignVectorNorm2Of(a, true)
	assert.InDeltaSlice(t, []float64{5, 5}, norms.Data(), 1e-12)
	assert.Panics(t, func() { norms.AssignVectorNorm2Of(a, false) })
}

func TestAssignElementInverseOf(t *testing.T) {
	a := FromRows([][]float64{{2, 4}}, CPU)
	inv := New[float64](0, 0, CPU)
	inv.AssignElementInverseOf(a)
	assert.Equal(t, []float64{0.5, 0.25}, inv.Data())
}

func TestAssignTransposeOf(t *testing.T) {
	a := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}, CPU)
	tr := New[float64](0, 0, CPU)
	tr.AssignTransposeOf(a)
	require.Equal(t, 3, tr.Rows())
	require.Equal(t, 2, tr.Cols())
	assert.Equal(t, 2.0, tr.At(1, 0))
	assert.Equal(t, 6.0, tr.At(2, 1))
}

func TestDiagonalKernels(t *testing.T) {
	m := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}, CPU)
	d := New[float64](0, 0, CPU)
	m.AssignDiagonalValuesTo(d)
	require.Equal(t, 1, d.Rows())
	assert.Equal(t, []float64{1, 5, 9}, d.Data())

	z := New[float64](3, 3, CPU)
	z.SetDiagonalValue(d)
	assert.Equal(t, 1.0, z.At(0, 0))
	assert.Equal(t, 5.0, z.At(1, 1))
	assert.Equal(t, 9.0, z.At(2, 2))
	assert.Equal(t, 0.0, z.At(0, 1))
}
