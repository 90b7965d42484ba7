// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
)

// Parameter is a learnable leaf holding static data with no minibatch
// layout. Either dimension may start at zero and be inferred from how the
// node is used; the final validation pass requires both resolved.
type Parameter[T constraints.Float] struct {
	base[T]
	learnable bool
}

func NewParameter[T constraints.Float](name string, rows, cols int, device matrix.Device) *Parameter[T] {
	p := &Parameter[T]{base: newBase[T]("Parameter", name), learnable: true}
	p.device = device
	p.value = matrix.New[T](rows, cols, device)
	return p
}

// NewScalarConstant returns a fixed 1×1 leaf, used for operation arguments
// such as stride selectors and shift offsets.
func NewScalarConstant[T constraints.Float](name string, v T, device matrix.Device) *Parameter[T] {
	p := NewParameter[T](name, 1, 1, device)
	p.learnable = false
	p.value.Set(0, 0, v)
	return p
}

// SetLearnable controls whether backward passes propagate a gradient into
// this leaf.
func (p *Parameter[T]) SetLearnable(learnable bool) { p.learnable = learnable }

func (p *Parameter[T]) NeedsGradient() bool { return p.learnable }

func (p *Parameter[T]) Validate(finalPass bool) error {
	if finalPass && p.value.IsEmpty() {
		return shapeErrorf("Parameter %q: dimensions unresolved (%dx%d)", p.name, p.value.Rows(), p.value.Cols())
	}
	return nil
}

func (p *Parameter[T]) Evaluate(fr minibatch.FrameRange) {}

func (p *Parameter[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	p.checkInputIndex(inputIndex)
}

// Input is a leaf fed with minibatch data. It carries a layout describing
// its columns; the value is sized rows × layout columns.
type Input[T constraints.Float] struct {
	base[T]
	rows int
}

func NewInput[T constraints.Float](name string, rows int, device matrix.Device) *Input[T] {
	in := &Input[T]{base: newBase[T]("Input", name), rows: rows}
	in.device = device
	in.value = matrix.New[T](rows, 0, device)
	return in
}

func (in *Input[T]) NeedsGradient() bool { return false }

// Bind attaches a minibatch to the input: the layout plus a value matrix
// of matching width.
func (in *Input[T]) Bind(data *matrix.Matrix[T], layout *minibatch.Layout) {
	if in.rows == 0 {
		in.rows = data.Rows()
	}
	in.layout = layout
	in.value.SetValue(data)
}

// InferDims lets a peer resolve the row dimension; the column dimension is
// owned by the bound layout.
func (in *Input[T]) InferDims(rows, cols int) {
	if in.rows == 0 && rows > 0 {
		in.rows = rows
	}
	in.base.InferDims(rows, 0)
}

func (in *Input[T]) Validate(finalPass bool) error {
	if in.layout != nil && (in.value.Rows() != in.rows || in.value.Cols() != in.layout.Cols()) {
		in.value.Resize(in.rows, in.layout.Cols())
	}
	if finalPass {
		if in.layout == nil {
			return invalidArgumentf("Input %q: no minibatch layout bound", in.name)
		}
		if in.rows == 0 {
			return shapeErrorf("Input %q: row dimension unresolved", in.name)
		}
	}
	return nil
}

func (in *Input[T]) Evaluate(fr minibatch.FrameRange) {}

func (in *Input[T]) ComputeGradient(inputIndex int, fr minibatch.FrameRange) {
	in.checkInputIndex(inputIndex)
}
