// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pool recycles scratch matrices across graph evaluations. Nodes
// request temporaries before a pass and release them afterwards, so repeated
// passes reuse the same backing storage instead of reallocating it.
package pool

import (
	"golang.org/x/exp/constraints"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/DLwzsr/CNTK/internal/matrix"
)

// Pool hands out scratch matrices and tracks which ones are on loan.
// A matrix obtained from Request must be returned with Release before it
// can be handed out again. Pool is not safe for concurrent use.
type Pool[T constraints.Float] struct {
	free   []*matrix.Matrix[T]
	leased map[*matrix.Matrix[T]]struct{}
}

// New returns an empty pool.
func New[T constraints.Float]() *Pool[T] {
	return &Pool[T]{leased: make(map[*matrix.Matrix[T]]struct{})}
}

// Request leases a scratch matrix on the given device. The matrix starts
// empty; the caller resizes it to whatever it needs. The contents of a
// recycled matrix are unspecified.
func (p *Pool[T]) Request(device matrix.Device) *matrix.Matrix[T] {
	var m *matrix.Matrix[T]
	if n := len(p.free); n > 0 {
		m = p.free[n-1]
		p.free = p.free[:n-1]
		m.MoveTo(device)
		klog.V(2).Infof("pool: recycled %dx%d scratch matrix, %d free remain", m.Rows(), m.Cols(), len(p.free))
	} else {
		m = matrix.New[T](0, 0, device)
		klog.V(2).Info("pool: allocated new scratch matrix")
	}
	p.leased[m] = struct{}{}
	return m
}

// Release returns a leased matrix to the pool. Releasing a matrix the pool
// did not lease, or releasing one twice, panics.
func (p *Pool[T]) Release(m *matrix.Matrix[T]) {
	if m == nil {
		exceptions.Panicf("pool.Release: nil matrix")
	}
	if _, ok := p.leased[m]; !ok {
		exceptions.Panicf("pool.Release: matrix %dx%d was not leased from this pool", m.Rows(), m.Cols())
	}
	delete(p.leased, m)
	p.free = append(p.free, m)
	klog.V(2).Infof("pool: released %dx%d scratch matrix, %d free", m.Rows(), m.Cols(), len(p.free))
}

// LiveLeases reports how many matrices are currently on loan.
func (p *Pool[T]) LiveLeases() int { return len(p.leased) }
