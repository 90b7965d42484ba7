// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/node"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// Type aliases for public API

// Node is one operation in the computation graph.
type Node[T constraints.Float] = node.Node[T]

// Parameter is a learnable leaf with static columns.
type Parameter[T constraints.Float] = node.Parameter[T]

// Input is a leaf fed with minibatch data.
type Input[T constraints.Float] = node.Input[T]

// ImageDescriptor interprets a value's rows as an image volume.
type ImageDescriptor = node.ImageDescriptor

// Layout maps minibatch columns onto parallel sequences and time steps.
type Layout = minibatch.Layout

// FrameRange selects all frames or a single time step.
type FrameRange = minibatch.FrameRange

// Pool recycles scratch matrices across passes.
type Pool[T constraints.Float] = pool.Pool[T]

// Error sentinels returned by Resolve; match with errors.Is.
var (
	ErrShape           = node.ErrShape
	ErrInvalidArgument = node.ErrInvalidArgument
)

// NewLayout returns a gap-free layout for numParallel sequences of
// numSteps time steps.
func NewLayout(numParallel, numSteps int) *Layout {
	return minibatch.NewLayout(numParallel, numSteps)
}

// AllFrames selects the whole minibatch.
func AllFrames() FrameRange { return minibatch.AllFrames() }

// Frame selects the single time step t.
func Frame(t int) FrameRange { return minibatch.Frame(t) }

// NewPool returns an empty scratch pool.
func NewPool[T constraints.Float]() *Pool[T] { return pool.New[T]() }

// TopoSort returns the nodes reachable from roots in dependency order.
func TopoSort[T constraints.Float](roots ...Node[T]) []Node[T] {
	return node.TopoSort(roots...)
}

// Resolve runs two-pass shape inference over the graph.
func Resolve[T constraints.Float](roots ...Node[T]) error {
	return node.Resolve(roots...)
}

// Forward evaluates the nodes in order over the frame range.
func Forward[T constraints.Float](order []Node[T], p *Pool[T], fr FrameRange) {
	node.Forward(order, p, fr)
}

// Backward propagates gradients in reverse order. Seed the root's
// gradient before calling.
func Backward[T constraints.Float](order []Node[T], p *Pool[T], fr FrameRange) {
	node.Backward(order, p, fr)
}

// ResetGradients zeroes every node's gradient.
func ResetGradients[T constraints.Float](order []Node[T]) {
	node.ResetGradients(order)
}

// Leaf constructors.

func NewParameter[T constraints.Float](name string, rows, cols int, device matrix.Device) *Parameter[T] {
	return node.NewParameter[T](name, rows, cols, device)
}

func NewScalarConstant[T constraints.Float](name string, v T, device matrix.Device) *Parameter[T] {
	return node.NewScalarConstant(name, v, device)
}

func NewInput[T constraints.Float](name string, rows int, device matrix.Device) *Input[T] {
	return node.NewInput[T](name, rows, device)
}

// Operation constructors.

func NewPlus[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewPlus(name, a, b)
}

func NewMinus[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewMinus(name, a, b)
}

func NewScale[T constraints.Float](name string, s, x Node[T]) Node[T] {
	return node.NewScale(name, s, x)
}

func NewNegate[T constraints.Float](name string, x Node[T]) Node[T] {
	return node.NewNegate(name, x)
}

func NewElementTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewElementTimes(name, a, b)
}

func NewRowElementTimes[T constraints.Float](name string, x, row Node[T]) Node[T] {
	return node.NewRowElementTimes(name, x, row)
}

func NewColumnElementTimes[T constraints.Float](name string, x, col Node[T]) Node[T] {
	return node.NewColumnElementTimes(name, x, col)
}

func NewDiagTimes[T constraints.Float](name string, diag, x Node[T]) Node[T] {
	return node.NewDiagTimes(name, diag, x)
}

func NewTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewTimes(name, a, b)
}

func NewTransposeTimes[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewTransposeTimes(name, a, b)
}

func NewStrideTimes[T constraints.Float](name string, a, b, strideSelector Node[T]) Node[T] {
	return node.NewStrideTimes(name, a, b, strideSelector)
}

func NewKhatriRaoProduct[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewKhatriRaoProduct(name, a, b)
}

func NewCosDistance[T constraints.Float](name string, a, b Node[T]) Node[T] {
	return node.NewCosDistance(name, a, b)
}

func NewCosDistanceWithNegativeSamples[T constraints.Float](name string, a, b, shift, negCount Node[T]) Node[T] {
	return node.NewCosDistanceWithNegativeSamples(name, a, b, shift, negCount)
}

func NewSumElements[T constraints.Float](name string, x Node[T]) Node[T] {
	return node.NewSumElements(name, x)
}

func NewSumColumnElements[T constraints.Float](name string, x Node[T]) Node[T] {
	return node.NewSumColumnElements(name, x)
}

func NewTranspose[T constraints.Float](name string, x Node[T]) Node[T] {
	return node.NewTranspose(name, x)
}

func NewDiagonal[T constraints.Float](name string, x Node[T]) Node[T] {
	return node.NewDiagonal(name, x)
}
