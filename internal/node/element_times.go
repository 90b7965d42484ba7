// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// elementTimes is the exact-shape elementwise product. Unlike Plus it does
// not broadcast; both operands must resolve to identical dimensions.
type elementTimes[T constraints.Float] struct {
	base[T]
}

func NewElementTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return &elementTimes[T]{base: newBase[T]("ElementTimes", name, a, b)}
}

func (n *elementTimes[T]) Validate(finalPass bool) error {
	i0, i1 := n.inputs[0], n.inputs[1]
	i0.InferDims(i1.Value().Rows(), i1.Value().Cols())
	i1.InferDims(i0.Value().Rows(), i0.Value().Cols())
	if err := n.inheritLayout(); err != nil {
		return err
	}
	v0, v1 := i0.Value(), i1.Value()
	if !v0.IsEmpty() {
		n.value.Resize(v0.Rows(), v0.Cols())
	}
	if finalPass {
		if v0.IsEmpty() {
			return shapeErrorf("ElementTimes %q: operand dimensions unresolved", n.name)
		}
		if !v0.SameDims(v1) {
			return shapeErrorf("ElementTimes %q: operands are %dx%d and %dx%d", n.name, v0.Rows(), v0.Cols(), v1.Rows(), v1.Cols())
		}
	}
	return nil
}

func (n *elementTimes[T]) Evaluate(fr minibatch.FrameRange) {
	n.outputSlice(fr).AssignElementProductOf(n.valueSlice(0, fr), n.valueSlice(1, fr))
}

func (n *elementTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	g := n.outputGradientSlice(fr)
	other := n.valueSlice(1-inputIndex, fr)
	n.gradientSlice(inputIndex, fr).AddElementProductOf(g, other)
}

// rowElementTimes scales each column of its first input by the matching
// entry of a 1×cols row vector.
type rowElementTimes[T constraints.Float] struct {
	base[T]
	temp scratch[T]
}

func NewRowElementTimes[T constraints.Float](name string, x, row Node[T]) Node[T] {
	return &rowElementTimes[T]{base: newBase[T]("RowElementTimes", name, x, row)}
}

func (n *rowElementTimes[T]) Validate(finalPass bool) error {
	x, row := n.inputs[0], n.inputs[1]
	row.InferDims(1, x.Value().Cols())
	x.InferDims(0, row.Value().Cols())
	if err := n.inheritLayout(); err != nil {
		return err
	}
	xv, rv := x.Value(), row.Value()
	if !xv.IsEmpty() {
		n.value.Resize(xv.Rows(), xv.Cols())
	}
	if finalPass {
		if xv.IsEmpty() {
			return shapeErrorf("RowElementTimes %q: operand dimensions unresolved", n.name)
		}
		if rv.Rows() != 1 || rv.Cols() != xv.Cols() {
			return shapeErrorf("RowElementTimes %q: want a 1x%d row factor, got %dx%d", n.name, xv.Cols(), rv.Rows(), rv.Cols())
		}
	}
	return nil
}

func (n *rowElementTimes[T]) Evaluate(fr minibatch.FrameRange) {
	out := n.outputSlice(fr)
	out.SetValue(n.valueSlice(0, fr))
	out.RowElementMultiplyWith(n.valueSlice(1, fr))
}

func (n *rowElementTimes[T]) RequestMatricesBeforeGradient(p *pool.Pool[T]) {
	n.temp.request(p, n.device)
}

func (n *rowElementTimes[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T]) {
	n.temp.release(p)
}

func (n *rowElementTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		n.temp.m.SetValue(g)
		n.temp.m.RowElementMultiplyWith(n.valueSlice(1, fr))
		n.gradientSlice(0, fr).Add(n.temp.m)
	case 1:
		n.temp.m.AssignInnerProductOf(g, n.valueSlice(0, fr), true)
		n.gradientSlice(1, fr).Add(n.temp.m)
	}
}

// columnElementTimes scales each row of its first input by the matching
// entry of a rows×1 column vector.
type columnElementTimes[T constraints.Float] struct {
	base[T]
	temp scratch[T]
}

func NewColumnElementTimes[T constraints.Float](name string, x, col Node[T]) Node[T] {
	return &columnElementTimes[T]{base: newBase[T]("ColumnElementTimes", name, x, col)}
}

func (n *columnElementTimes[T]) Validate(finalPass bool) error {
	x, col := n.inputs[0], n.inputs[1]
	col.InferDims(x.Value().Rows(), 1)
	x.InferDims(col.Value().Rows(), 0)
	if err := n.inheritLayout(); err != nil {
		return err
	}
	xv, cv := x.Value(), col.Value()
	if !xv.IsEmpty() {
		n.value.Resize(xv.Rows(), xv.Cols())
	}
	if finalPass {
		if xv.IsEmpty() {
			return shapeErrorf("ColumnElementTimes %q: operand dimensions unresolved", n.name)
		}
		if cv.Cols() != 1 || cv.Rows() != xv.Rows() {
			return shapeErrorf("ColumnElementTimes %q: want a %dx1 column factor, got %dx%d", n.name, xv.Rows(), cv.Rows(), cv.Cols())
		}
	}
	return nil
}

func (n *columnElementTimes[T]) Evaluate(fr minibatch.FrameRange) {
	out := n.outputSlice(fr)
	out.SetValue(n.valueSlice(0, fr))
	out.ColumnElementMultiplyWith(n.valueSlice(1, fr))
}

func (n *columnElementTimes[T]) RequestMatricesBeforeGradient(p *pool.Pool[T]) {
	n.temp.request(p, n.device)
}

func (n *columnElementTimes[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T]) {
	n.temp.release(p)
}

func (n *columnElementTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		n.temp.m.SetValue(g)
		n.temp.m.ColumnElementMultiplyWith(n.valueSlice(1, fr))
		n.gradientSlice(0, fr).Add(n.temp.m)
	case 1:
		n.temp.m.AssignInnerProductOf(g, n.valueSlice(0, fr), false)
		n.gradientSlice(1, fr).Add(n.temp.m)
	}
}

// diagTimes multiplies by a diagonal matrix stored as its rows×1 first
// input: out(i,j) = d(i) * x(i,j).
type diagTimes[T constraints.Float] struct {
	base[T]
	temp scratch[T]
}

func NewDiagTimes[T constraints.Float](name string, diag, x Node[T]) Node[T] {
	return &diagTimes[T]{base: newBase[T]("DiagTimes", name, diag, x)}
}

func (n *diagTimes[T]) Validate(finalPass bool) error {
	d, x := n.inputs[0], n.inputs[1]
	d.InferDims(x.Value().Rows(), 1)
	x.InferDims(d.Value().Rows(), 0)
	if err := n.inheritLayout(); err != nil {
		return err
	}
	dv, xv := d.Value(), x.Value()
	if dv.Rows() > 0 && xv.Cols() > 0 {
		n.value.Resize(dv.Rows(), xv.Cols())
	}
	if finalPass {
		if dv.Cols() != 1 {
			return shapeErrorf("DiagTimes %q: diagonal must be a column vector, got %dx%d", n.name, dv.Rows(), dv.Cols())
		}
		if dv.Rows() != xv.Rows() {
			return shapeErrorf("DiagTimes %q: diagonal has %d rows but operand has %d", n.name, dv.Rows(), xv.Rows())
		}
	}
	return nil
}

func (n *diagTimes[T]) Evaluate(fr minibatch.FrameRange) {
	out := n.outputSlice(fr)
	out.SetValue(n.valueSlice(1, fr))
	out.ColumnElementMultiplyWith(n.inputs[0].Value())
}

func (n *diagTimes[T]) RequestMatricesBeforeGradient(p *pool.Pool[T]) {
	n.temp.request(p, n.device)
}

func (n *diagTimes[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T]) {
	n.temp.release(p)
}

func (n *diagTimes[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	n.checkInputIndex(inputIndex)
	minibatch.MaskToZero(n.Gradient(), n.layout, fr)
	g := n.outputGradientSlice(fr)
	switch inputIndex {
	case 0:
		n.temp.m.AssignInnerProductOf(g, n.valueSlice(1, fr), false)
		n.inputs[0].Gradient().Add(n.temp.m)
	case 1:
		n.temp.m.SetValue(g)
		n.temp.m.ColumnElementMultiplyWith(n.inputs[0].Value())
		n.gradientSlice(1, fr).Add(n.temp.m)
	}
}
