// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
)

const (
	strideRows = 0
	strideCols = 1
)

// strideTimes is a batched product against sub-matrices of A addressed at
// a fixed stride s, where s is the number of B columns. With column
// striding, output column k is (A's columns k, k+s, k+2s, ...) times
// B[:,k]. With row striding the same construction applies to A's rows,
// with the sub-matrix transposed. The third input selects the stride axis
// (0 rows, 1 columns) and is read once during validation.
//
// A's physical columns are stride-addressed independent of time, so the
// op only runs over the whole sequence, never a single frame.
type strideTimes[T constraints.Float] struct {
	base[T]
	strideDim int
}

func NewStrideTimes[T constraints.Float](name string, a, b, strideSelector Node[T]) Node[T] {
	return &strideTimes[T]{base: newBase[T]("StrideTimes", name, a, b, strideSelector)}
}

func (n *strideTimes[T]) Validate(finalPass bool) error {
	a, b := n.inputs[0].Value(), n.inputs[1].Value()
	sel := n.inputs[2].Value()
	if sel.Rows() != 1 || sel.Cols() != 1 {
		return invalidArgumentf("StrideTimes %q: stride selector must be 1x1, got %dx%d", n.name, sel.Rows(), sel.Cols())
	}
	n.strideDim = int(sel.Get00())
	if n.strideDim != strideRows && n.strideDim != strideCols {
		return invalidArgumentf("StrideTimes %q: stride selector must be 0 (rows) or 1 (columns), got %d", n.name, n.strideDim)
	}

	// layout comes from B alone; A's columns are not time steps
	n.layout = n.inputs[1].Layout()

	s := b.Cols()
	if s > 0 && b.Rows() > 0 {
		if n.strideDim == strideCols {
			n.inputs[0].InferDims(0, b.Rows()*s)
		} else {
			n.inputs[0].InferDims(b.Rows()*s, 0)
		}
	}
	if s > 0 {
		switch {
		case n.strideDim == strideCols && a.Cols() > 0 && a.Cols()%s == 0:
			n.inputs[1].InferDims(a.Cols()/s, 0)
		case n.strideDim == strideRows && a.Rows() > 0 && a.Rows()%s == 0:
			n.inputs[1].InferDims(a.Rows()/s, 0)
		}
	}

	a, b = n.inputs[0].Value(), n.inputs[1].Value()
	s = b.Cols()
	if s > 0 && !a.IsEmpty() {
		if n.strideDim == strideCols {
			n.value.Resize(a.Rows(), s)
		} else {
			n.value.Resize(a.Cols(), s)
		}
	}

	if !finalPass {
		return nil
	}
	if a.IsEmpty() || b.IsEmpty() {
		return shapeErrorf("StrideTimes %q: operand dimensions unresolved (%dx%d against %dx%d)", n.name, a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	if n.strideDim == strideCols {
		if a.Cols() != b.Rows()*s {
			return shapeErrorf("StrideTimes %q: left operand needs %d columns for %d sub-matrices of %d, got %dx%d", n.name, b.Rows()*s, s, b.Rows(), a.Rows(), a.Cols())
		}
	} else if a.Rows() != b.Rows()*s {
		return shapeErrorf("StrideTimes %q: left operand needs %d rows for %d sub-matrices of %d, got %dx%d", n.name, b.Rows()*s, s, b.Rows(), a.Rows(), a.Cols())
	}
	return nil
}

func (n *strideTimes[T]) InferOutputDescriptor() { n.desc = Column(n.value.Rows()) }

func (n *strideTimes[T]) requireAllFrames(fr minibatch.FrameRange) {
	if !fr.IsAllFrames() {
		exceptions.Panicf("StrideTimes %q: single-frame evaluation is not defined for stride-addressed operands", n.name)
	}
}

func (n *strideTimes[T]) Evaluate(fr minibatch.FrameRange) {
	n.requireAllFrames(fr)
	a := n.inputs[0].Value()
	b := n.inputs[1].Value()
	out := n.value
	s := b.Cols()
	for k := 0; k < s; k++ {
		for i := 0; i < out.Rows(); i++ {
			var sum T
			for j := 0; j < b.Rows(); j++ {
				if n.strideDim == strideCols {
					sum += a.At(i, k+j*s) * b.At(j, k)
				} else {
					sum += a.At(k+j*s, i) * b.At(j, k)
				}
			}
			out.Set(i, k, sum)
		}
	}
}

func (n *strideTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	n.requireAllFrames(fr)
	if inputIndex == 2 {
		exceptions.Panicf("StrideTimes %q: the stride selector is not differentiable", n.name)
	}
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.Gradient()
	a := n.inputs[0].Value()
	b := n.inputs[1].Value()
	s := b.Cols()

	switch inputIndex {
	case 0:
		ga := n.inputs[0].Gradient()
		for k := 0; k < s; k++ {
			for i := 0; i < g.Rows(); i++ {
				for j := 0; j < b.Rows(); j++ {
					if n.strideDim == strideCols {
						ga.Set(i, k+j*s, ga.At(i, k+j*s)+g.At(i, k)*b.At(j, k))
					} else {
						ga.Set(k+j*s, i, ga.At(k+j*s, i)+g.At(i, k)*b.At(j, k))
					}
				}
			}
		}
	case 1:
		gb := n.inputs[1].Gradient()
		for k := 0; k < s; k++ {
			for j := 0; j < b.Rows(); j++ {
				var sum T
				for i := 0; i < g.Rows(); i++ {
					if n.strideDim == strideCols {
						sum += a.At(i, k+j*s) * g.At(i, k)
					} else {
						sum += a.At(k+j*s, i) * g.At(i, k)
					}
				}
				gb.Set(j, k, gb.At(j, k)+sum)
			}
		}
	}
}
