// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// scale multiplies its second input by a learnable 1×1 first input.
type scale[T constraints.Float] struct {
	base[T]
}

// NewScale returns a node computing s * x, where s must be a 1×1 scalar.
func NewScale[T constraints.Float](name string, s, x Node[T]) Node[T] {
	return &scale[T]{base: newBase[T]("Scale", name, s, x)}
}

func (n *scale[T]) Validate(finalPass bool) error {
	n.inputs[0].InferDims(1, 1)
	if err := n.inheritLayout(); err != nil {
		return err
	}
	x := n.inputs[1].Value()
	if x.Rows() > 0 && x.Cols() > 0 {
		n.value.Resize(x.Rows(), x.Cols())
	}
	if finalPass {
		s := n.inputs[0].Value()
		if s.Rows() != 1 || s.Cols() != 1 {
			return invalidArgumentf("Scale %q: scale factor must be 1x1, got %dx%d", n.name, s.Rows(), s.Cols())
		}
		if x.IsEmpty() {
			return shapeErrorf("Scale %q: operand dimensions unresolved", n.name)
		}
	}
	return nil
}

func (n *scale[T]) InferOutputDescriptor() {
	n.desc = n.inputs[1].OutputDescriptor()
	if n.desc.NumElements() != n.value.Rows() {
		n.desc = Column(n.value.Rows())
	}
}

func (n *scale[T]) Evaluate(fr minibatch.FrameRange) {
	s := n.inputs[0].Value().Get00()
	n.outputSlice(fr).AssignScaledOf(s, n.valueSlice(1, fr))
}

func (n *scale[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		// d/ds (s*x) summed against the incoming gradient
		minibatch.MaskToZero(n.inputs[1].Value(), n.inputs[1].Layout(), fr)
		cg := n.inputs[0].Gradient()
		cg.AddScalarValue(matrix.InnerProductOfMatrices(g, n.valueSlice(1, fr)))
	case 1:
		s := n.inputs[0].Value().Get00()
		n.gradientSlice(1, fr).AddScaled(s, g)
	}
}

// negate flips the sign of its input elementwise.
type negate[T constraints.Float] struct {
	base[T]
}

func NewNegate[T constraints.Float](name string, x Node[T]) Node[T] {
	return &negate[T]{base: newBase[T]("Negate", name, x)}
}

func (n *negate[T]) Validate(finalPass bool) error {
	if err := n.inheritLayout(); err != nil {
		return err
	}
	x := n.inputs[0].Value()
	if x.Rows() > 0 && x.Cols() > 0 {
		n.value.Resize(x.Rows(), x.Cols())
	}
	if finalPass && x.IsEmpty() {
		return shapeErrorf("Negate %q: operand dimensions unresolved", n.name)
	}
	return nil
}

func (n *negate[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignScaledOf(-1, n.valueSlice(0, fr))
}

func (n *negate[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	n.gradientSlice(0, fr).Sub(n.outputGradientSlice(fr))
}
