// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMajorLayout(t *testing.T) {
	m := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}, CPU)
	require.Equal(t, 2, m.Rows())
	require.Equal(t, 3, m.Cols())
	// columns are contiguous in the backing slice
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, m.Data())
	assert.Equal(t, 5.0, m.At(1, 1))
}

func TestColumnSliceSharesStorage(t *testing.T) {
	m := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}, CPU)
	s := m.ColumnSlice(1, 2)
	require.Equal(t, 2, s.Rows())
	require.Equal(t, 2, s.Cols())
	assert.Equal(t, 2.0, s.At(0, 0))

	s.Set(0, 0, 42)
	assert.Equal(t, 42.0, m.At(0, 1), "writes through a slice must land in the parent")

	assert.Panics(t, func() { s.Resize(3, 3) }, "views must not be resized")
}

func TestReshapedView(t *testing.T) {
	m := FromRows([][]float64{
		{1, 3, 5},
		{2, 4, 6},
	}, CPU)
	r := m.Reshaped(3, 2)
	require.Equal(t, 3, r.Rows())
	// element order is preserved across the reshape
	assert.Equal(t, 1.0, r.At(0, 0))
	assert.Equal(t, 4.0, r.At(0, 1))
	assert.Panics(t, func() { m.Reshaped(4, 2) })
}

func TestResizeZeroes(t *testing.T) {
	m := New[float32](2, 2, CPU)
	m.SetAll(7)
	m.Resize(3, 3)
	require.Equal(t, 9, m.NumElements())
	for _, v := range m.Data() {
		assert.Equal(t, float32(0), v)
	}
}

func TestFormatRetag(t *testing.T) {
	m := New[float64](2, 2, CPU)
	m.Set(0, 1, 3)
	require.Equal(t, Dense, m.Format())
	m.SwitchFormat(SparseBlockCol)
	assert.Equal(t, SparseBlockCol, m.Format())
	assert.Equal(t, 3.0, m.At(0, 1), "retagging must not disturb the values")
	m.SwitchFormat(Dense)
	assert.Equal(t, 3.0, m.At(0, 1))
}
