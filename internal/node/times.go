// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// times computes the matrix product A·B. The left operand is static model
// weight; minibatch data flows through the right operand.
type times[T constraints.Float] struct {
	base[T]
}

func NewTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &times[T]{base: newBase[T]("Times", name, a, b)}
}

func (n *times[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0], n.inputs[1]
	// the inner dimension resolves from either side
	a.InferDims(0, b.Value().Rows())
	b.InferDims(a.Value().Cols(), 0)
	// a consumer may have written our output shape back; push it down
	if n.value.Rows() > 0 {
		a.InferDims(n.value.Rows(), 0)
	}
	if n.value.Cols() > 0 {
		b.InferDims(0, n.value.Cols())
	}
	if err := n.inheritLayout(); err != nil {
		return err
	}
	av, bv := a.Value(), b.Value()
	if av.Rows() > 0 && bv.Cols() > 0 {
		n.value.Resize(av.Rows(), bv.Cols())
	}
	if !finalPass {
		return nil
	}
	if a.Layout() != nil {
		return invalidArgumentf("Times %q: left operand carries a minibatch layout", n.name)
	}
	if av.Rows() == 0 || bv.Cols() == 0 {
		return shapeErrorf("Times %q: operand dimensions unresolved (%dx%d times %dx%d)", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
	}
	if av.Cols() != bv.Rows() {
		return shapeErrorf("Times %q: inner dimensions disagree (%dx%d times %dx%d)", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
	}
	return nil
}

func (n *times[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *times[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignProductOf(n.inputs[0].Value(), false, n.valueSlice(1, fr), false)
}

func (n *times[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		retagSparseGradient(n.inputs[1].Value(), n.inputs[0].Gradient(), n.Gradient())
		matrix.MultiplyAndAdd(g, false, n.valueSlice(1, fr), true, n.inputs[0].Gradient())
	case 1:
		matrix.MultiplyAndAdd(n.inputs[0].Value(), true, g, false, n.gradientSlice(1, fr))
	}
}

// transposeTimes computes Aᵗ·B without materializing the transpose.
type transposeTimes[T constraints.Float] struct {
	base[T]
}

func NewTransposeTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &transposeTimes[T]{base: newBase[T]("TransposeTimes", name, a, b)}
}

func (n *transposeTimes[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0], n.inputs[1]
	// the shared dimension is both operands' row count
	a.InferDims(b.Value().Rows(), 0)
	b.InferDims(a.Value().Rows(), 0)
	// a consumer may have written our output shape back; push it down
	if n.value.Rows() > 0 {
		a.InferDims(0, n.value.Rows())
	}
	if n.value.Cols() > 0 {
		b.InferDims(0, n.value.Cols())
	}
	if err := n.inheritLayout(); err != nil {
		return err
	}
	av, bv := a.Value(), b.Value()
	if av.Cols() > 0 && bv.Cols() > 0 {
		n.value.Resize(av.Cols(), bv.Cols())
	}
	if !finalPass {
		return nil
	}
	if a.Layout() != nil {
		return invalidArgumentf("TransposeTimes %q: left operand carries a minibatch layout", n.name)
	}
	if av.Cols() == 0 || bv.Cols() == 0 {
		return shapeErrorf("TransposeTimes %q: operand dimensions unresolved (%dx%d transposed times %dx%d)", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
	}
	if av.Rows() != bv.Rows() {
		return shapeErrorf("TransposeTimes %q: row counts disagree (%dx%d transposed times %dx%d)", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
	}
	return nil
}

func (n *transposeTimes[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *transposeTimes[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignProductOf(n.inputs[0].Value(), true, n.valueSlice(1, fr), false)
}

func (n *transposeTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		retagSparseGradient(n.inputs[1].Value(), n.inputs[0].Gradient(), n.Gradient())
		matrix.MultiplyAndAdd(n.valueSlice(1, fr), false, g, true, n.inputs[0].Gradient())
	case 1:
		matrix.MultiplyAndAdd(n.inputs[0].Value(), false, g, false, n.gradientSlice(1, fr))
	}
}

// retagSparseGradient marks a weight gradient as block-sparse by column
// when the data flowing through the product is block-sparse: only the
// blocks touched by the data can receive nonzero gradient.
func retagSparseGradient[T constraints.Float](data, weightGrad, outGrad *matrix.Matrix[T]) {
	if data.Format() == matrix.SparseBlockCol &&
		weightGrad.Format() == matrix.Dense &&
		outGrad.Format() == matrix.Dense {
		weightGrad.SwitchFormat(matrix.SparseBlockCol)
	}
}
