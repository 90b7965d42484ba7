// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

import (
	"golang.org/x/exp/constraints"

	"github.com/DLwzsr/CNTK/internal/matrix"
	"github.com/DLwzsr/CNTK/internal/pool"
)

// scratch is a pooled temporary owned by a node between its request and
// release hooks.
type scratch[T constraints.Float] struct {
	m *matrix.Matrix[T]
}

func (s *scratch[T]) request(p *pool.Pool[T], device matrix.Device) {
	s.m = p.Request(device)
}

func (s *scratch[T]) release(p *pool.Pool[T]) {
	p.Release(s.m)
	s.m = nil
}
