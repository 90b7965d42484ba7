// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

func TestCosDistanceValues(t *testing.T) {
	a := parameterFromRows("a", [][]float64{
		{3, 1, 0},
		{4, 0, 2},
	})
	b := parameterFromRows("b", [][]float64{
		{3, 0, 0},
		{4, 1, 5},
	})
	cos := NewCosDistance[float64]("cos", a, b)

	prepare(t, cos, minibatch.AllFrames())

	require.Equal(t, 1, cos.Value().Rows())
	require.Equal(t, 3, cos.Value().Cols())
	// parallel columns score 1, orthogonal columns 0
	assert.InDelta(t, 1.0, cos.Value().At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, cos.Value().At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, cos.Value().At(0, 2), 1e-12)
}

func TestCosDistanceParallelColumnsHaveZeroGradient(t *testing.T) {
	a := parameterFromRows("a", [][]float64{{3}, {4}})
	b := parameterFromRows("b", [][]float64{{6}, {8}})
	cos := NewCosDistance[float64]("cos", a, b)

	prepare(t, cos, minibatch.AllFrames())

	// the similarity of parallel vectors is at its maximum; scaling
	// either one cannot change it
	for i := 0; i < 2; i++ {
		assert.InDelta(t, 0.0, a.Gradient().At(i, 0), 1e-12)
		assert.InDelta(t, 0.0, b.Gradient().At(i, 0), 1e-12)
	}
}

func TestCosDistanceWithNegativeSamplesValues(t *testing.T) {
	a := parameterFromRows("a", [][]float64{
		{1, 0, 2, 0},
		{0, 3, 0, 1},
	})
	b := parameterFromRows("b", [][]float64{
		{2, 1, 0, 4},
		{0, 1, 5, 0},
	})
	shift := NewScalarConstant[float64]("shift", 1, matrix.CPU)
	neg := NewScalarConstant[float64]("neg", 2, matrix.CPU)
	cosneg := NewCosDistanceWithNegativeSamples[float64]("cosneg", a, b, shift, neg)

	prepare(t, cosneg, minibatch.AllFrames())

	require.Equal(t, 3, cosneg.Value().Rows())
	require.Equal(t, 4, cosneg.Value().Cols())

	cosOf := func(ai, aj, bi, bj float64) float64 {
		return (ai*bi + aj*bj) / (math.Hypot(ai, aj) * math.Hypot(bi, bj))
	}
	// row 0 pairs column j with b column j
	assert.InDelta(t, cosOf(1, 0, 2, 0), cosneg.Value().At(0, 0), 1e-12)
	assert.InDelta(t, cosOf(0, 3, 1, 1), cosneg.Value().At(0, 1), 1e-12)
	// row 1 shifts by 1, row 2 by 2, wrapping at 4 columns
	assert.InDelta(t, cosOf(1, 0, 1, 1), cosneg.Value().At(1, 0), 1e-12)
	assert.InDelta(t, cosOf(0, 1, 1, 1), cosneg.Value().At(2, 3), 1e-12)
}

func TestCosDistanceWithZeroNegativesMatchesCosDistance(t *testing.T) {
	rows := [][]float64{
		{1, 2, 0},
		{4, 1, 3},
		{2, 0, 1},
	}
	otherRows := [][]float64{
		{0, 1, 2},
		{1, 1, 0},
		{3, 2, 2},
	}

	a1 := parameterFromRows("a1", rows)
	b1 := parameterFromRows("b1", otherRows)
	plain := NewCosDistance[float64]("plain", a1, b1)
	prepare(t, plain, minibatch.AllFrames())

	a2 := parameterFromRows("a2", rows)
	b2 := parameterFromRows("b2", otherRows)
	shift := NewScalarConstant[float64]("shift", 1, matrix.CPU)
	neg := NewScalarConstant[float64]("neg", 0, matrix.CPU)
	shifted := NewCosDistanceWithNegativeSamples[float64]("shifted", a2, b2, shift, neg)
	prepare(t, shifted, minibatch.AllFrames())

	require.Equal(t, 1, shifted.Value().Rows())
	for j := 0; j < 3; j++ {
		assert.InDelta(t, plain.Value().At(0, j), shifted.Value().At(0, j), 1e-12)
	}
	// the gradients agree as well, since row 0 is the true-pair score
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			assert.InDelta(t, a1.Gradient().At(i, j), a2.Gradient().At(i, j), 1e-12)
			assert.InDelta(t, b1.Gradient().At(i, j), b2.Gradient().At(i, j), 1e-12)
		}
	}
}

func TestCosDistanceNegShiftIsNotDifferentiable(t *testing.T) {
	a := parameterFromRows("a", [][]float64{{1, 2}, {3, 4}})
	b := parameterFromRows("b", [][]float64{{5, 6}, {7, 8}})
	shift := NewScalarConstant[float64]("shift", 1, matrix.CPU)
	neg := NewScalarConstant[float64]("neg", 1, matrix.CPU)
	cosneg := NewCosDistanceWithNegativeSamples[float64]("cosneg", a, b, shift, neg)
	prepare(t, cosneg, minibatch.AllFrames())

	assert.Panics(t, func() { cosneg.ComputeGradient(2, minibatch.AllFrames()) })
	assert.Panics(t, func() { cosneg.ComputeGradient(3, minibatch.AllFrames()) })
}
