// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DLwzsr/CNTK/graph"
	"github.com/DLwzsr/CNTK/matrix"
)

func TestLinearModelForwardBackward(t *testing.T) {
	w := graph.NewParameter[float64]("w", 1, 2, matrix.CPU)
	w.Value().SetValue(matrix.FromRows([][]float64{{2, 3}}, matrix.CPU))

	x := graph.NewInput[float64]("x", 2, matrix.CPU)
	x.Bind(matrix.FromRows([][]float64{
		{1, 0, 2},
		{0, 1, 1},
	}, matrix.CPU), graph.NewLayout(1, 3))

	y := graph.NewTimes[float64]("y", w, x)
	loss := graph.NewSumElements[float64]("loss", y)

	order := graph.TopoSort[float64](loss)
	require.NoError(t, graph.Resolve[float64](loss))

	p := graph.NewPool[float64]()
	graph.Forward(order, p, graph.AllFrames())
	// y = [2, 3, 7], loss = 12
	assert.Equal(t, 12.0, loss.Value().Get00())

	graph.ResetGradients(order)
	loss.Gradient().SetAll(1)
	graph.Backward(order, p, graph.AllFrames())

	// dloss/dw sums the data columns
	assert.Equal(t, 3.0, w.Gradient().At(0, 0))
	assert.Equal(t, 2.0, w.Gradient().At(0, 1))
	assert.Equal(t, 0, p.LiveLeases())
}

func TestResolveReportsShapeConflicts(t *testing.T) {
	a := graph.NewParameter[float64]("a", 2, 2, matrix.CPU)
	b := graph.NewParameter[float64]("b", 3, 3, matrix.CPU)
	err := graph.Resolve[float64](graph.NewPlus[float64]("sum", a, b))
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrShape)
}
