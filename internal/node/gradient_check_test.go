// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// prepare resolves the graph and runs one forward/backward cycle with the
// loss taken as the sum of the root's entries (all-ones upstream gradient).
func prepare(t *testing.T, root Node[float64], fr minibatch.FrameRange) ([]Node[float64], *pool.Pool[float64]) {
	t.Helper()
	order := TopoSort(root)
	require.NoError(t, Resolve(root))
	p := pool.New[float64]()
	Forward(order, p, fr)
	ResetGradients(order)
	root.Gradient().SetAll(1)
	Backward(order, p, fr)
	return order, p
}

// checkGradients compares every analytic parameter gradient against a
// central finite difference of the summed root value.
func checkGradients(t *testing.T, root Node[float64], params ...Node[float64]) {
	t.Helper()
	const (
		eps = 1e-6
		tol = 1e-5
	)
	order, p := prepare(t, root, minibatch.AllFrames())
	for _, prm := range params {
		v := prm.Value()
		g := prm.Gradient()
		for j := 0; j < v.Cols(); j++ {
			for i := 0; i < v.Rows(); i++ {
				orig := v.At(i, j)
				v.Set(i, j, orig+eps)
				Forward(order, p, minibatch.AllFrames())
				plus := root.Value().SumOfElements()
				v.Set(i, j, orig-eps)
				Forward(order, p, minibatch.AllFrames())
				minus := root.Value().SumOfElements()
				v.Set(i, j, orig)
				numeric := (plus - minus) / (2 * eps)
				assert.InDelta(t, numeric, g.At(i, j), tol,
					"%s (%d,%d): analytic %v vs numeric %v", prm.Name(), i, j, g.At(i, j), numeric)
			}
		}
	}
}

func randomParameter(rng *rand.Rand, name string, rows, cols int) *Parameter[float64] {
	p := NewParameter[float64](name, rows, cols, matrix.CPU)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			p.Value().Set(i, j, rng.NormFloat64())
		}
	}
	return p
}

func TestTimesGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	shapes := [][3]int{{2, 3, 4}, {1, 5, 2}, {4, 1, 3}, {3, 3, 3}, {5, 2, 6}}
	for _, s := range shapes {
		t.Run(fmt.Sprintf("%dx%d_times_%dx%d", s[0], s[1], s[1], s[2]), func(t *testing.T) {
			a := randomParameter(rng, "a", s[0], s[1])
			b := randomParameter(rng, "b", s[1], s[2])
			checkGradients(t, NewTimes[float64]("prod", a, b), a, b)
		})
	}
}

func TestTransposeTimesGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	shapes := [][3]int{{3, 2, 4}, {5, 1, 2}, {2, 4, 4}, {4, 3, 1}, {6, 2, 5}}
	for _, s := range shapes {
		t.Run(fmt.Sprintf("%dx%d_ttimes_%dx%d", s[0], s[1], s[0], s[2]), func(t *testing.T) {
			a := randomParameter(rng, "a", s[0], s[1])
			b := randomParameter(rng, "b", s[0], s[2])
			checkGradients(t, NewTransposeTimes[float64]("prod", a, b), a, b)
		})
	}
}

func TestElementTimesFamilyGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	t.Run("ElementTimes", func(t *testing.T) {
		a := randomParameter(rng, "a", 3, 4)
		b := randomParameter(rng, "b", 3, 4)
		checkGradients(t, NewElementTimes[float64]("et", a, b), a, b)
	})
	t.Run("RowElementTimes", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		row := randomParameter(rng, "row", 1, 4)
		checkGradients(t, NewRowElementTimes[float64]("ret", x, row), x, row)
	})
	t.Run("ColumnElementTimes", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		col := randomParameter(rng, "col", 3, 1)
		checkGradients(t, NewColumnElementTimes[float64]("cet", x, col), x, col)
	})
	t.Run("DiagTimes", func(t *testing.T) {
		d := randomParameter(rng, "d", 3, 1)
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewDiagTimes[float64]("dt", d, x), d, x)
	})
}

func TestPlusMinusScaleGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(10))

	t.Run("PlusColVector", func(t *testing.T) {
		a := randomParameter(rng, "a", 3, 4)
		b := randomParameter(rng, "b", 3, 1)
		checkGradients(t, NewPlus[float64]("p", a, b), a, b)
	})
	t.Run("MinusRowVector", func(t *testing.T) {
		a := randomParameter(rng, "a", 3, 4)
		b := randomParameter(rng, "b", 1, 4)
		checkGradients(t, NewMinus[float64]("m", a, b), a, b)
	})
	t.Run("PlusTiled", func(t *testing.T) {
		a := randomParameter(rng, "a", 2, 2)
		b := randomParameter(rng, "b", 2, 6)
		checkGradients(t, NewPlus[float64]("p", a, b), a, b)
	})
	t.Run("MinusTiledSubtrahend", func(t *testing.T) {
		a := randomParameter(rng, "a", 2, 6)
		b := randomParameter(rng, "b", 2, 2)
		checkGradients(t, NewMinus[float64]("m", a, b), a, b)
	})
	t.Run("Scale", func(t *testing.T) {
		s := randomParameter(rng, "s", 1, 1)
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewScale[float64]("sc", s, x), s, x)
	})
	t.Run("Negate", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewNegate[float64]("neg", x), x)
	})
}

func TestKhatriRaoGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := randomParameter(rng, "a", 2, 3)
	b := randomParameter(rng, "b", 4, 3)
	checkGradients(t, NewKhatriRaoProduct[float64]("kr", a, b), a, b)
}

func TestStrideTimesGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	t.Run("ColumnStride", func(t *testing.T) {
		// 3 sub-matrices of 2 columns each packed into a
		a := randomParameter(rng, "a", 4, 6)
		b := randomParameter(rng, "b", 2, 3)
		sel := NewScalarConstant[float64]("dim", 1, matrix.CPU)
		checkGradients(t, NewStrideTimes[float64]("st", a, b, sel), a, b)
	})
	t.Run("RowStride", func(t *testing.T) {
		a := randomParameter(rng, "a", 6, 4)
		b := randomParameter(rng, "b", 2, 3)
		sel := NewScalarConstant[float64]("dim", 0, matrix.CPU)
		checkGradients(t, NewStrideTimes[float64]("st", a, b, sel), a, b)
	})
}

func TestCosDistanceGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	a := randomParameter(rng, "a", 4, 5)
	b := randomParameter(rng, "b", 4, 5)
	checkGradients(t, NewCosDistance[float64]("cos", a, b), a, b)
}

func TestCosDistanceWithNegativeSamplesGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	a := randomParameter(rng, "a", 3, 5)
	b := randomParameter(rng, "b", 3, 5)
	shift := NewScalarConstant[float64]("shift", 1, matrix.CPU)
	neg := NewScalarConstant[float64]("neg", 2, matrix.CPU)
	checkGradients(t, NewCosDistanceWithNegativeSamples[float64]("cosneg", a, b, shift, neg), a, b)
}

func TestReductionGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(15))

	t.Run("SumElements", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewSumElements[float64]("sum", x), x)
	})
	t.Run("SumColumnElements", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewSumColumnElements[float64]("colsum", x), x)
	})
	t.Run("Transpose", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 4)
		checkGradients(t, NewTranspose[float64]("tr", x), x)
	})
	t.Run("Diagonal", func(t *testing.T) {
		x := randomParameter(rng, "x", 3, 5)
		checkGradients(t, NewDiagonal[float64]("diag", x), x)
	})
}
