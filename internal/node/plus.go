// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// plusMinus is the shared implementation of Plus and Minus. The two ops
// differ only in the sign applied to the second operand.
type plusMinus[T constraints.Float] struct {
	base[T]
	subtract bool
}

// NewPlus returns a node computing the broadcasting elementwise sum of a
// and b. Operands may be a scalar, a column vector, a row vector, or a
// matrix whose column count divides the other's.
func NewPlus[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &plusMinus[T]{base: newBase[T]("Plus", name, a, b)}
}

// NewMinus returns a node computing a - b with the same broadcasting rules
// as Plus.
func NewMinus[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &plusMinus[T]{base: newBase[T]("Minus", name, a, b), subtract: true}
}

func (n *plusMinus[T]) Validate(finalPass bool) error {
	return n.validateBinaryZip(finalPass, true)
}

// InferOutputDescriptor keeps the descriptor of the larger operand, since
// the smaller one is replicated into its geometry.
func (n *plusMinus[T]) InferOutputDescriptor() {
	d0, d1 := n.inputs[0].OutputDescriptor(), n.inputs[1].OutputDescriptor()
	n.desc = d0
	if d1.NumElements() > d0.NumElements() {
		n.desc = d1
	}
	if n.desc.NumElements() != n.value.Rows() {
		n.desc = Column(n.value.Rows())
	}
}

func (n *plusMinus[T]) Evaluate(fr minibatch.FrameRange) {
	out := n.outputSlice(fr)
	a := n.valueSlice(0, fr)
	b := n.valueSlice(1, fr)

	tiled := matchPattern(out.Rows(), out.Cols(), a.Rows(), a.Cols(), true) == bcTileColumns ||
		matchPattern(out.Rows(), out.Cols(), b.Rows(), b.Cols(), true) == bcTileColumns
	if !tiled {
		if n.subtract {
			out.AssignDifferenceOf(a, b)
		} else {
			out.AssignSumOf(a, b)
		}
		return
	}

	// column tiling: the narrower operand repeats across column groups
	small, large := a, b
	swapped := false
	if a.Cols() > b.Cols() {
		small, large = b, a
		swapped = true
	}
	k := small.Cols()
	for t := 0; t*k < out.Cols(); t++ {
		og := out.ColumnSlice(t*k, k)
		lg := large.ColumnSlice(t*k, k)
		switch {
		case !n.subtract:
			og.AssignSumOf(lg, small)
		case swapped: // small is the subtrahend
			og.AssignDifferenceOf(lg, small)
		default:
			og.AssignDifferenceOf(small, lg)
		}
	}
}

func (n *plusMinus[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	var sign T = 1
	if n.subtract && inputIndex == 1 {
		sign = -1
	}

	// gradients flowing out of gap columns are defined to be zero
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	cg := n.gradientSlice(inputIndex, fr)

	switch matchPattern(g.Rows(), g.Cols(), cg.Rows(), cg.Cols(), true) {
	case bcEqual:
		cg.AddScaled(sign, g)
	case bcScalar:
		cg.AddScalarValue(sign * g.SumOfElements())
	case bcColVector:
		rows := cg.Rows()
		folded := g.Reshaped(rows, g.NumElements()/rows)
		ones := matrix.Ones[T](folded.Cols(), 1, g.Device())
		matrix.MultiplyAndWeightedAdd(sign, folded, false, ones, false, 1, cg)
	case bcRowVector:
		ones := matrix.Ones[T](1, g.Rows(), g.Device())
		matrix.MultiplyAndWeightedAdd(sign, ones, false, g, false, 1, cg)
	case bcTileColumns:
		k := cg.Cols()
		for t := 0; t*k < g.Cols(); t++ {
			cg.AddScaled(sign, g.ColumnSlice(t*k, k))
		}
	default:
		exceptions.Panicf("%s %q: %dx%d gradient reached a %dx%d operand past validation", n.op, n.name, g.Rows(), g.Cols(), cg.Rows(), cg.Cols())
	}
}
