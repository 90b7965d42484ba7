// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// cosDistanceNeg scores each column of A against negCount+1 columns of B:
// its own column, plus negCount circularly shifted "negative" columns.
// Row 0 of the output holds the true-pair similarity for each column;
// row m >= 1 pairs column j with B column (j+shift+m-1) mod numCols.
//
// The shift and negative-sample count are 1×1 inputs read once per pass
// and never differentiated.
type cosDistanceNeg[T constraints.Float] struct {
	base[T]
	invNorm0 scratch[T]
	invNorm1 scratch[T]
	prod     scratch[T]
}

func NewCosDistanceWithNegativeSamples[T constraints.Float](name string, a, b, shift, negCount Node[T]) Node[T] {
	return &cosDistanceNeg[T]{base: newBase[T]("CosDistanceWithNegativeSamples", name, a, b, shift, negCount)}
}

func (n *cosDistanceNeg[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0], n.inputs[1]
	a.InferDims(b.Value().Rows(), b.Value().Cols())
	b.InferDims(a.Value().Rows(), a.Value().Cols())
	if err := n.inheritLayout(); err != nil {
		return err
	}
	av, bv := a.Value(), b.Value()
	shift, neg := n.inputs[2].Value(), n.inputs[3].Value()

	if finalPass {
		if av.IsEmpty() || bv.IsEmpty() {
			return shapeErrorf("CosDistanceWithNegativeSamples %q: operand dimensions unresolved", n.name)
		}
		if !av.SameDims(bv) {
			return shapeErrorf("CosDistanceWithNegativeSamples %q: operands are %dx%d and %dx%d", n.name, av.Rows(), av.Cols(), bv.Rows(), bv.Cols())
		}
		if shift.Rows() != 1 || shift.Cols() != 1 || neg.Rows() != 1 || neg.Cols() != 1 {
			return invalidArgumentf("CosDistanceWithNegativeSamples %q: shift and sample count must be 1x1 inputs", n.name)
		}
	}
	if bv.Cols() > 0 && neg.Rows() == 1 && neg.Cols() == 1 {
		n.value.Resize(int(neg.Get00())+1, bv.Cols())
	}
	return nil
}

func (n *cosDistanceNeg[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *cosDistanceNeg[T]) shiftArgs() (shift, negCount int) {
	return int(n.inputs[2].Value().Get00()), int(n.inputs[3].Value().Get00())
}

func (n *cosDistanceNeg[T]) RequestMatricesBeforeEval(p *pool.Pool[T]) {
	n.invNorm0.request(p, n.device)
	n.invNorm1.request(p, n.device)
	n.prod.request(p, n.device)
}

func (n *cosDistanceNeg[T]) ReleaseMatricesAfterEval(p *pool.Pool[T]) {
	n.prod.release(p)
}

func (n *cosDistanceNeg[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T]) {
	n.invNorm0.release(p)
	n.invNorm1.release(p)
}

func (n *cosDistanceNeg[T]) Evaluate(fr minibatch.FrameRange) {
	a := n.valueSlice(0, fr)
	b := n.valueSlice(1, fr)
	out := n.outputSlice(fr)
	shift, negCount := n.shiftArgs()

	n.invNorm0.m.AssignVectorNorm2Of(a, true)
	n.invNorm0.m.AssignElementInverseOf(n.invNorm0.m)
	n.invNorm1.m.AssignVectorNorm2Of(b, true)
	n.invNorm1.m.AssignElementInverseOf(n.invNorm1.m)

	out.AssignInnerProductOfWithShiftNeg(a, b, true, shift, negCount)
	n.prod.m.AssignElementProductOfWithShiftNeg(n.invNorm0.m, n.invNorm1.m, shift, negCount)
	out.ElementMultiplyWith(n.prod.m)
}

// negPairColumn maps output row m at column j to the B column it was
// scored against.
func negPairColumn(j, m, shift, cols int) int {
	if m == 0 {
		return j
	}
	return (j + shift + m - 1) % cols
}

func (n *cosDistanceNeg[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	if inputIndex >= 2 {
		exceptions.Panicf("CosDistanceWithNegativeSamples %q: input %d is not differentiable", n.name, inputIndex)
	}
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	out := n.outputSlice(fr)
	a := n.valueSlice(0, fr)
	b := n.valueSlice(1, fr)
	inv0, inv1 := n.invNorm0.m, n.invNorm1.m
	shift, negCount := n.shiftArgs()
	cols := out.Cols()
	grad := n.gradientSlice(inputIndex, fr)

	// each of the negCount+1 rows contributes the plain cosine gradient,
	// with the circular shift applied when indexing the B side
	for j := 0; j < cols; j++ {
		for m := 0; m <= negCount; m++ {
			jb := negPairColumn(j, m, shift, cols)
			gv := g.At(m, j)
			if gv == 0 {
				continue
			}
			s := out.At(m, j)
			switch inputIndex {
			case 0:
				ia, ib := inv0.At(0, j), inv1.At(0, jb)
				for i := 0; i < a.Rows(); i++ {
					d := b.At(i, jb)*ia*ib - a.At(i, j)*ia*ia*s
					grad.Set(i, j, grad.At(i, j)+gv*d)
				}
			case 1:
				ia, ib := inv0.At(0, j), inv1.At(0, jb)
				for i := 0; i < b.Rows(); i++ {
					d := a.At(i, j)*ia*ib - b.At(i, jb)*ib*ib*s
					grad.Set(i, jb, grad.At(i, jb)+gv*d)
				}
			}
		}
	}
}
