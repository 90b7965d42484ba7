// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package node implements the operation catalogue of the computation graph:
// broadcast arithmetic, matrix products, cosine similarities, and reductions,
// together with the two-pass shape resolver and the forward/backward drivers.
//
// A node owns a value matrix and a lazily allocated gradient matrix of the
// same dimensions. Evaluate fills the value from the input values over a
// frame range; ComputeGradient adds one input's partial derivative into that
// input's gradient. Shape errors surface from Validate as returned errors;
// contract violations inside the numeric paths panic.
package node

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// Sentinels for the error classes Validate can return. Wrapped errors
// match via errors.Is.
var (
	ErrShape           = errors.New("shape mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
)

func shapeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrShape, format, args...)
}

func invalidArgumentf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// Node is one operation in the graph.
type Node[T constraints.Float] interface {
	// Name identifies the node in error messages and logs.
	Name() string
	// Op is the operation name, e.g. "Plus" or "Times".
	Op() string
	// Inputs returns the operand nodes in order.
	Inputs() []Node[T]

	// Value holds the node's output. Its dimensions are set by Validate.
	Value() *matrix.Matrix[T]
	// Gradient holds d(loss)/d(value), allocated zeroed at the value's
	// dimensions on first use.
	Gradient() *matrix.Matrix[T]
	// ResetGradient zeroes the gradient for a fresh backward pass.
	ResetGradient()

	// Layout describes how value columns map onto sequences and time
	// steps. Nil means the value is time-invariant.
	Layout() *minibatch.Layout
	SetLayout(*minibatch.Layout)

	// InferDims fills only the still-unknown (zero) dimensions of the
	// value. The resolver uses it to write shapes back into peers.
	InferDims(rows, cols int)
	// Validate checks and infers shapes. Non-final passes tolerate
	// unknown dimensions; the final pass must resolve everything.
	Validate(finalPass bool) error

	// NeedsGradient reports whether a backward pass must propagate a
	// gradient into this node.
	NeedsGradient() bool

	// Evaluate computes the value over the frame range from the inputs.
	Evaluate(fr minibatch.FrameRange)
	// ComputeGradient adds the partial derivative with respect to input
	// inputIndex into that input's gradient.
	ComputeGradient(inputIndex int, fr minibatch.FrameRange)

	// Scratch hooks bracketing the forward and backward passes.
	RequestMatricesBeforeEval(p *pool.Pool[T])
	ReleaseMatricesAfterEval(p *pool.Pool[T])
	RequestMatricesBeforeGradient(p *pool.Pool[T])
	ReleaseMatricesAfterGradient(p *pool.Pool[T])

	// OutputDescriptor carries the image interpretation of the rows.
	OutputDescriptor() ImageDescriptor
	// InferOutputDescriptor derives the descriptor from the inputs.
	InferOutputDescriptor()

	// MoveTo migrates the node's owned matrices to a device.
	MoveTo(device matrix.Device)
}

// ImageDescriptor interprets a value's rows as a width × height × channels
// volume. Nodes that destroy spatial structure collapse it to a column.
type ImageDescriptor struct {
	Width    int
	Height   int
	Channels int
}

// Column returns the descriptor of an unstructured column of n rows.
func Column(n int) ImageDescriptor {
	return ImageDescriptor{Width: 1, Height: n, Channels: 1}
}

// NumElements reports the number of rows the descriptor spans.
func (d ImageDescriptor) NumElements() int {
	return d.Width * d.Height * d.Channels
}

type base[T constraints.Float] struct {
	name   string
	op     string
	inputs []Node[T]
	value  *matrix.Matrix[T]
	grad   *matrix.Matrix[T]
	layout *minibatch.Layout
	desc   ImageDescriptor
	device matrix.Device
}

func newBase[T constraints.Float](op, name string, inputs ...Node[T]) base[T] {
	device := matrix.CPU
	if len(inputs) > 0 {
		device = inputs[0].Value().Device()
	}
	return base[T]{
		name:   name,
		op:     op,
		inputs: inputs,
		value:  matrix.New[T](0, 0, device),
		device: device,
	}
}

func (b *base[T]) Name() string { return b.name }

func (b *base[T]) Op() string { return b.op }

func (b *base[T]) Inputs() []Node[T] { return b.inputs }

func (b *base[T]) Value() *matrix.Matrix[T] { return b.value }

func (b *base[T]) Gradient() *matrix.Matrix[T] {
	if b.grad == nil {
		b.grad = matrix.New[T](b.value.Rows(), b.value.Cols(), b.device)
	} else if !b.grad.SameDims(b.value) {
		b.grad.Resize(b.value.Rows(), b.value.Cols())
	}
	return b.grad
}

func (b *base[T]) ResetGradient() { b.Gradient().SetAll(0) }

// NeedsGradient is true when any input needs one. Leaves override it.
func (b *base[T]) NeedsGradient() bool {
	for _, in := range b.inputs {
		if in.NeedsGradient() {
			return true
		}
	}
	return false
}

func (b *base[T]) Layout() *minibatch.Layout { return b.layout }

func (b *base[T]) SetLayout(l *minibatch.Layout) { b.layout = l }

// InferDims fills only dimensions that are still zero.
func (b *base[T]) InferDims(rows, cols int) {
	r, c := b.value.Rows(), b.value.Cols()
	changed := false
	if r == 0 && rows > 0 {
		r, changed = rows, true
	}
	if c == 0 && cols > 0 {
		c, changed = cols, true
	}
	if changed {
		b.value.Resize(r, c)
	}
}

func (b *base[T]) RequestMatricesBeforeEval(p *pool.Pool[T])     {}
func (b *base[T]) ReleaseMatricesAfterEval(p *pool.Pool[T])      {}
func (b *base[T]) RequestMatricesBeforeGradient(p *pool.Pool[T]) {}
func (b *base[T]) ReleaseMatricesAfterGradient(p *pool.Pool[T])  {}

func (b *base[T]) OutputDescriptor() ImageDescriptor { return b.desc }

// InferOutputDescriptor copies the first input's descriptor, falling back
// to an unstructured column when it does not cover the rows.
func (b *base[T]) InferOutputDescriptor() {
	if len(b.inputs) > 0 {
		b.desc = b.inputs[0].OutputDescriptor()
	}
	if b.desc.NumElements() != b.value.Rows() {
		b.desc = Column(b.value.Rows())
	}
}

func (b *base[T]) MoveTo(device matrix.Device) {
	b.device = device
	b.value.MoveTo(device)
	if b.grad != nil {
		b.grad.MoveTo(device)
	}
}

// valueSlice returns the view of input i's value selected by fr under that
// input's own layout.
func (b *base[T]) valueSlice(i int, fr minibatch.FrameRange) *matrix.Matrix[T] {
	in := b.inputs[i]
	return minibatch.Slice(in.Value(), in.Layout(), fr)
}

// gradientSlice returns the view of input i's gradient selected by fr.
func (b *base[T]) gradientSlice(i int, fr minibatch.FrameRange) *matrix.Matrix[T] {
	in := b.inputs[i]
	return minibatch.Slice(in.Gradient(), in.Layout(), fr)
}

// outputSlice returns the view of the node's own value selected by fr.
func (b *base[T]) outputSlice(fr minibatch.FrameRange) *matrix.Matrix[T] {
	return minibatch.Slice(b.value, b.layout, fr)
}

// outputGradientSlice returns the view of the node's own gradient selected
// by fr.
func (b *base[T]) outputGradientSlice(fr minibatch.FrameRange) *matrix.Matrix[T] {
	return minibatch.Slice(b.Gradient(), b.layout, fr)
}

func (b *base[T]) checkInputIndex(i int) {
	if i < 0 || i >= len(b.inputs) {
		exceptions.Panicf("%s %q: gradient requested for input %d of %d", b.op, b.name, i, len(b.inputs))
	}
}

// inheritLayout adopts the unique non-nil layout among the inputs. Two
// distinct layouts describing different geometry are a validation error.
func (b *base[T]) inheritLayout() error {
	var found *minibatch.Layout
	for _, in := range b.inputs {
		l := in.Layout()
		if l == nil {
			continue
		}
		if found != nil && !found.Same(l) {
			return invalidArgumentf("%s %q: inputs carry incompatible minibatch layouts", b.op, b.name)
		}
		if found == nil {
			found = l
		}
	}
	b.layout = found
	return nil
}
