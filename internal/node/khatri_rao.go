// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// khatriRao is the column-wise Kronecker product: column j of the output
// is kron(a[:,j], b[:,j]), so the row counts multiply.
type khatriRao[T constraints.Float] struct {
	base[T]
}

func NewKhatriRaoProduct[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &khatriRao[T]{base: newBase[T]("KhatriRaoProduct", name, a, b)}
}

func (n *khatriRao[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0], n.inputs[1]
	a.InferDims(0, b.Value().Cols())
	b.InferDims(0, a.Value().Cols())
	if err := n.inheritLayout(); err != nil {
		return err
	}
	av, bv := a.Value(), b.Value()
	if av.Rows() > 0 && bv.Rows() > 0 && av.Cols() > 0 {
		n.value.Resize(av.Rows()*bv.Rows(), av.Cols())
	}
	if !finalPass {
		return nil
	}
	if av.IsEmpty() || bv.IsEmpty() {
		return shapeErrorf("KhatriRaoProduct %q: operand dimensions unresolved", n.name)
	}
	if av.Cols() != bv.Cols() {
		return shapeErrorf("KhatriRaoProduct %q: operands have %d and %d columns", n.name, av.Cols(), bv.Cols())
	}
	return nil
}

func (n *khatriRao[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *khatriRao[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignKhatriRaoProductOf(n.valueSlice(0, fr), n.valueSlice(1, fr))
}

func (n *khatriRao[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		n.gradientSlice(0, fr).AddColumnReshapeProductOf(g, n.valueSlice(1, fr), false)
	case 1:
		n.gradientSlice(1, fr).AddColumnReshapeProductOf(g, n.valueSlice(0, fr), true)
	}
}
