// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/DLwzsr/CNTK/internal/minibatch"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// TopoSort returns the nodes reachable from roots in dependency order:
// every node appears after all of its inputs.
func TopoSort[T constraints.Float](roots ...Node[T]) []Node[T] {
	var order []Node[T]
	seen := make(map[Node[T]]bool)
	var visit func(n Node[T])
	visit = func(n Node[T]) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, in := range n.Inputs() {
			visit(in)
		}
		order = append(order, n)
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

// Resolve runs shape inference over the graph reachable from roots.
//
// Non-final validation passes repeat until no node's dimensions change;
// each pass may write inferred dimensions back into peer nodes, so later
// sweeps see more information than earlier ones. A final pass then demands
// every dimension resolved and compatible.
func Resolve[T constraints.Float](roots ...Node[T]) error {
	order := TopoSort(roots...)
	for pass := 0; ; pass++ {
		if pass > len(order)+2 {
			return shapeErrorf("shape inference did not converge after %d passes", pass)
		}
		before := snapshotDims(order)
		for _, n := range order {
			if err := n.Validate(false); err != nil {
				return err
			}
		}
		if dimsEqual(before, snapshotDims(order)) {
			break
		}
	}
	for _, n := range order {
		if err := n.Validate(true); err != nil {
			return err
		}
		n.InferOutputDescriptor()
		klog.V(1).Infof("resolved %s %q to %dx%d", n.Op(), n.Name(), n.Value().Rows(), n.Value().Cols())
	}
	return nil
}

func snapshotDims[T constraints.Float](order []Node[T]) []int {
	dims := make([]int, 0, 2*len(order))
	for _, n := range order {
		dims = append(dims, n.Value().Rows(), n.Value().Cols())
	}
	return dims
}

func dimsEqual(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Forward evaluates the nodes in order over the frame range, bracketing
// each with its scratch hooks.
func Forward[T constraints.Float](order []Node[T], p *pool.Pool[T], fr minibatch.FrameRange) {
	for _, n := range order {
		n.RequestMatricesBeforeEval(p)
		n.Evaluate(fr)
		n.ReleaseMatricesAfterEval(p)
	}
}

// Backward propagates gradients in reverse order. The caller seeds the
// root's gradient first. Inputs that need no gradient are skipped.
func Backward[T constraints.Float](order []Node[T], p *pool.Pool[T], fr minibatch.FrameRange) {
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		n.RequestMatricesBeforeGradient(p)
		for j, in := range n.Inputs() {
			if in.NeedsGradient() {
				n.ComputeGradient(j, fr)
			}
		}
		n.ReleaseMatricesAfterGradient(p)
	}
}

// ResetGradients zeroes every node's gradient for a fresh backward pass.
func ResetGradients[T constraints.Float](order []Node[T]) {
	for _, n := range order {
		n.ResetGradient()
	}
}
