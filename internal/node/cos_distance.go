// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// cosDistance computes the per-column cosine similarity of its operands:
// out(0,j) = (a[:,j] · b[:,j]) / (|a[:,j]| |b[:,j]|).
//
// The inverse norms are computed in the forward pass and kept leased until
// the backward pass has consumed them.
type cosDistance[T constraints.Float] struct {
	base[T]
	invNorm0  scratch[T]
	invNorm1  scratch[T]
	leftTerm  scratch[T]
	rightTerm scratch[T]
	temp      scratch[T]
}

func NewCosDistance[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &cosDistance[T]{base: newBase[T]("CosDistance", name, a, b)}
}

func (n *cosDistance[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0], n.inputs[1]
	a.InferDims(b.Value().Rows(), b.Value().Cols())
	b.InferDims(a.Value().Rows(), a.Value().Cols())
	if err := n.inheritLayout(); err != nil {
		return err
	}
	av, bv := a.Value(), b.Value()
	if bv.Cols() > 0 {
		n.value.Resize(1, bv.Cols())
	}
	if finalPass {
		if av.IsEmpty() || bv.IsEmpty() {
			return shapeErrorf("CosDistance %q: operand dimensions unresolved", n.name)
		}
		if !av.SameDims(bv) {
			return shapeErrorf("CosDistance %q: operands are %dx%d and %dx%d", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
		}
	}
	return nil
}

func (n *cosDistance[T]) InferOutputDescriptor() { n.desc = Column(1) }

func (n *cosDistance[T]) RequestMatricesBeforeEval(p *pool.Pool[T]) {
	n.invNorm0.request(p, n.device)
	n.invNorm1.request(p, n.device)
}

func (n *cosDistance[T]) RequestMatricesBeforeGradient(p *pool.Pool[T]) {
	n.leftTerm.request(p, n.device)
	n.rightTerm.request(p, n.device)
	n.temp.request(p, n.device)
}

func (n *cosDistance[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T]) {
	n.invNorm0.release(p)
	n.invNorm1.release(p)
	n.leftTerm.release(p)
	n.rightTerm.release(p)
	n.temp.release(p)
}

func (n *cosDistance[T]) Evaluate(fr minibatch.FrameRange) {
	a := n.valueSlice(0, fr)
	b := n.valueSlice(1, fr)
	out := n.outputSlice(fr)

	n.invNorm0.m.AssignVectorNorm2Of(a, true)
	n.invNorm0.m.AssignElementInverseOf(n.invNorm0.m)
	n.invNorm1.m.AssignVectorNorm2Of(b, true)
	n.invNorm1.m.AssignElementInverseOf(n.invNorm1.m)

	out.AssignInnerProductOf(a, b, true)
	out.ElementMultiplyWith(n.invNorm0.m)
	out.ElementMultiplyWith(n.invNorm1.m)
}

// ComputeGradient applies the quotient-rule derivative without recomputing
// norms: d/dself = other*invSelf*invOther - self*invSelf²*out, weighted by
// the incoming gradient row.
func (n *cosDistance[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	out := n.outputSlice(fr)
	self := n.valueSlice(inputIndex, fr)
	other := n.valueSlice(1-inputIndex, fr)
	invSelf, invOther := n.invNorm0.m, n.invNorm1.m
	if inputIndex == 1 {
		invSelf, invOther = invOther, invSelf
	}

	n.temp.m.AssignElementProductOf(invSelf, invOther)
	n.leftTerm.m.SetValue(other)
	n.leftTerm.m.RowElementMultiplyWith(n.temp.m)

	n.temp.m.AssignElementProductOf(out, invSelf)
	n.temp.m.ElementMultiplyWith(invSelf)
	n.rightTerm.m.SetValue(self)
	n.rightTerm.m.RowElementMultiplyWith(n.temp.m)

	n.leftTerm.m.Sub(n.rightTerm.m)
	n.leftTerm.m.RowElementMultiplyWith(g)
	n.gradientSlice(inputIndex, fr).Add(n.leftTerm.m)
}
