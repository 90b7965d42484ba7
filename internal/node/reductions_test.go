// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

func TestSumElementsExcludesPadding(t *testing.T) {
	in := NewInput[float64]("x", 2, matrix.CPU)
	layout := minibatch.NewLayout(2, 2)
	layout.MarkGap(1, 1) // sequence 1 ends after the first step
	in.Bind(matrix.FromRows([][]float64{
		{1, 2, 3, 100},
		{4, 5, 6, 200},
	}, matrix.CPU), layout)
	sum := NewSumElements[float64]("sum", in)

	prepare(t, sum, minibatch.AllFrames())

	assert.Equal(t, 21.0, sum.Value().Get00(), "the padded column must not contribute")
	assert.Nil(t, sum.Layout())
}

func TestSumColumnElements(t *testing.T) {
	x := parameterFromRows("x", [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	colsum := NewSumColumnElements[float64]("colsum", x)

	prepare(t, colsum, minibatch.AllFrames())

	assert.Equal(t, []float64{5, 7, 9}, colsum.Value().Data())
	// each output gradient broadcasts down its column
	assert.Equal(t, 1.0, x.Gradient().At(0, 0))
	assert.Equal(t, 1.0, x.Gradient().At(1, 2))
}

func TestTransposeValuesAndGradient(t *testing.T) {
	x := parameterFromRows("x", [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	tr := NewTranspose[float64]("tr", x)

	prepare(t, tr, minibatch.AllFrames())

	require.Equal(t, 3, tr.Value().Rows())
	require.Equal(t, 2, tr.Value().Cols())
	assert.Equal(t, 2.0, tr.Value().At(1, 0))
	assert.Equal(t, 6.0, tr.Value().At(2, 1))
	assert.Equal(t, 1.0, x.Gradient().At(0, 2))
}

func TestTransposeRejectsMinibatchData(t *testing.T) {
	in := NewInput[float64]("x", 2, matrix.CPU)
	in.Bind(matrix.New[float64](2, 2, matrix.CPU), minibatch.NewLayout(1, 2))
	err := Resolve[float64](NewTranspose[float64]("tr", in))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTransposeSingleFramePanics(t *testing.T) {
	x := parameterFromRows("x", [][]float64{{1, 2}, {3, 4}})
	tr := NewTranspose[float64]("tr", x)
	require.NoError(t, Resolve[float64](tr))
	assert.Panics(t, func() { tr.Evaluate(minibatch.Frame(0)) })
}

func TestStrideTimesSingleFramePanics(t *testing.T) {
	a := parameterFromRows("a", [][]float64{{1, 2, 3, 4}})
	b := parameterFromRows("b", [][]float64{{5, 6}, {7, 8}})
	sel := NewScalarConstant[float64]("dim", 1, matrix.CPU)
	st := NewStrideTimes[float64]("st", a, b, sel)
	require.NoError(t, Resolve[float64](st))
	assert.Panics(t, func() { st.Evaluate(minibatch.Frame(0)) })
}

func TestDiagonalValuesAndGradient(t *testing.T) {
	x := parameterFromRows("x", [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	})
	d := NewDiagonal[float64]("d", x)

	prepare(t, d, minibatch.AllFrames())

	require.Equal(t, 1, d.Value().Rows())
	// the diagonal run cycles through the rows
	assert.Equal(t, []float64{1, 6, 3, 8}, d.Value().Data())

	// only diagonal positions receive gradient
	assert.Equal(t, 1.0, x.Gradient().At(0, 0))
	assert.Equal(t, 1.0, x.Gradient().At(1, 1))
	assert.Equal(t, 0.0, x.Gradient().At(1, 0))
	assert.Equal(t, 0.0, x.Gradient().At(0, 1))
}

func TestElementTimesValues(t *testing.T) {
	a := parameterFromRows("a", [][]float64{{1, 2}, {3, 4}})
	b := parameterFromRows("b", [][]float64{{5, 6}, {7, 8}})
	et := NewElementTimes[float64]("et", a, b)

	prepare(t, et, minibatch.AllFrames())

	assert.Equal(t, []float64{5, 21, 12, 32}, et.Value().Data())
	// each operand's gradient is the other operand's value
	assert.Equal(t, b.Value().Data(), a.Gradient().Data())
	assert.Equal(t, a.Value().Data(), b.Gradient().Data())
}

func TestDiagTimesValues(t *testing.T) {
	d := parameterFromRows("d", [][]float64{{2}, {3}})
	x := parameterFromRows("x", [][]float64{{1, 2}, {3, 4}})
	dt := NewDiagTimes[float64]("dt", d, x)

	prepare(t, dt, minibatch.AllFrames())

	assert.Equal(t, []float64{2, 9, 4, 12}, dt.Value().Data())
	// diagonal gradient is the row sum of the scaled operand
	assert.Equal(t, 3.0, d.Gradient().At(0, 0))
	assert.Equal(t, 7.0, d.Gradient().At(1, 0))
}

func TestScaleValues(t *testing.T) {
	s := parameterFromRows("s", [][]float64{{2}})
	x := parameterFromRows("x", [][]float64{{1, 2}, {3, 4}})
	sc := NewScale[float64]("sc", s, x)

	prepare(t, sc, minibatch.AllFrames())

	assert.Equal(t, []float64{2, 6, 4, 8}, sc.Value().Data())
	assert.Equal(t, 10.0, s.Gradient().Get00(), "scalar gradient is the sum of the scaled operand")
	assert.Equal(t, 2.0, x.Gradient().At(0, 0))
}

func TestNegateValues(t *testing.T) {
	x := parameterFromRows("x", [][]float64{{1, -2}})
	neg := NewNegate[float64]("neg", x)

	prepare(t, neg, minibatch.AllFrames())

	assert.Equal(t, []float64{-1, 2}, neg.Value().Data())
	assert.Equal(t, []float64{-1, -1}, x.Gradient().Data())
}
