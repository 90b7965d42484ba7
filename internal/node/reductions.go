// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// sumElements reduces its whole input to a 1×1 sum. The result is
// time-invariant, so the node carries no layout of its own.
type sumElements[T constraints.Float] struct {
	base[T]
}

func NewSumElements[T constraints.Float](name string, x Node[T]) Node[T] {
	return &sumElements[T]{base: newBase[T]("SumElements", name, x)}
}

func (n *sumElements[T]) Validate(finalPass bool) error {
	n.layout = nil
	n.value.Resize(1, 1)
	if finalPass && n.inputs[0].Value().IsEmpty() {
		return shapeErrorf("SumElements %q: operand dimensions unresolved", n.name)
	}
	return nil
}

func (n *sumElements[T]) InferOutputDescriptor() { n.desc = Column(1) }

func (n *sumElements[T]) Evaluate(fr minibatch.FrameRange) {
	// padding columns must not reach the reduction
	minibatch.MaskToZero(n.inputs[0].Value(), n.inputs[0].Layout(), fr)
	n.value.Set(0, 0, n.valueSlice(0, fr).SumOfElements())
}

func (n *sumElements[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	in := n.inputs[0]
	n.gradientSlice(0, fr).Add(n.Gradient())
	minibatch.MaskToZero(in.Gradient(), in.Layout(), fr)
}

// sumColumnElements reduces each column to its sum, producing a 1×cols row.
type sumColumnElements[T constraints.Float] struct {
	base[T]
}

func NewSumColumnElements[T constraints.Float](name string, x Node[T]) Node[T] {
	return &sumColumnElements[T]{base: newBase[T]("SumColumnElements", name, x)}
}

func (n *sumColumnElements[T]) Validate(finalPass bool) error {
	if err := n.inheritLayout(); err != nil {
		return err
	}
	xv := n.inputs[0].Value()
	if xv.Cols() > 0 {
		n.value.Resize(1, xv.Cols())
	}
	if finalPass && xv.IsEmpty() {
		return shapeErrorf("SumColumnElements %q: operand dimensions unresolved", n.name)
	}
	return nil
}

func (n *sumColumnElements[T]) InferOutputDescriptor() { n.desc = Column(1) }

func (n *sumColumnElements[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignColumnSumsOf(n.valueSlice(0, fr))
}

func (n *sumColumnElements[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	// the 1×cols gradient row broadcasts down each column
	n.gradientSlice(0, fr).Add(n.outputGradientSlice(fr))
}

// transpose emits the full transpose of its input. Transposition mixes the
// time and sample axes, so minibatch data is rejected and evaluation only
// runs over the whole value.
type transpose[T constraints.Float] struct {
	base[T]
}

func NewTranspose[T constraints.Float](name string, x Node[T]) Node[T] {
	return &transpose[T]{base: newBase[T]("Transpose", name, x)}
}

func (n *transpose[T]) Validate(finalPass bool) error {
	xv := n.inputs[0].Value()
	if !xv.IsEmpty() {
		n.value.Resize(xv.Cols(), xv.Rows())
	}
	if finalPass {
		if n.inputs[0].Layout() != nil {
			return invalidArgumentf("Transpose %q: operand carries a minibatch layout", n.name)
		}
		if xv.IsEmpty() {
			return shapeErrorf("Transpose %q: operand dimensions unresolved", n.name)
		}
	}
	return nil
}

func (n *transpose[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *transpose[T]) requireAllFrames(fr minibatch.FrameRange) {
	if !fr.IsAllFrames() {
		exceptions.Panicf("Transpose %q: single-frame evaluation is not defined", n.name)
	}
}

func (n *transpose[T]) Evaluate(fr minibatch.FrameRange) {
	n.requireAllFrames(fr)
	n.value.AssignTransposeOf(n.inputs[0].Value())
}

func (n *transpose[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	n.requireAllFrames(fr)
	n.inputs[0].Gradient().AddTransposeOf(n.Gradient())
}

// diagonal extracts the cycled diagonal run of its input into a 1×cols row:
// out(0,j) = in(j mod rows, j).
type diagonal[T constraints.Float] struct {
	base[T]
}

func NewDiagonal[T constraints.Float](name string, x Node[T]) Node[T] {
	return &diagonal[T]{base: newBase[T]("Diagonal", name, x)}
}

func (n *diagonal[T]) Validate(finalPass bool) error {
	if err := n.inheritLayout(); err != nil {
		return err
	}
	xv := n.inputs[0].Value()
	if xv.Cols() > 0 {
		n.value.Resize(1, xv.Cols())
	}
	if finalPass && xv.IsEmpty() {
		return shapeErrorf("Diagonal %q: operand dimensions unresolved", n.name)
	}
	return nil
}

func (n *diagonal[T]) InferOutputDescriptor() { n.desc = Column(1) }

func (n *diagonal[T]) requireAllFrames(fr minibatch.FrameRange) {
	if !fr.IsAllFrames() {
		exceptions.Panicf("Diagonal %q: single-frame evaluation is not defined", n.name)
	}
}

func (n *diagonal[T]) Evaluate(fr minibatch.FrameRange) {
	n.requireAllFrames(fr)
	n.inputs[0].Value().AssignDiagonalValuesTo(n.value)
}

func (n *diagonal[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	n.requireAllFrames(fr)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.Gradient()
	cg := n.inputs[0].Gradient()
	rows := cg.Rows()
	// the contribution lands only on the diagonal positions
	for j := 0; j < g.Cols(); j++ {
		i := j % rows
		cg.Set(i, j, cg.At(i, j)+g.At(0, j))
	}
}
