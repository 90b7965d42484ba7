// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package minibatch

import (
	"golang.org/x/exp/constraints"

	"github.com/gomlx/exceptions"

	"github.com/DLwzsr/CNTK/internal/matrix"
)

// FrameRange selects either every frame of a minibatch or a single time
// step. Operations evaluate over the selected column range only.
type FrameRange struct {
	allFrames bool
	t         int
}

// AllFrames selects the whole minibatch.
func AllFrames() FrameRange { return FrameRange{allFrames: true} }

// Frame selects the single time step t.
func Frame(t int) FrameRange {
	if t < 0 {
		exceptions.Panicf("minibatch.Frame: negative time step %d", t)
	}
	return FrameRange{t: t}
}

// IsAllFrames reports whether the range spans the whole minibatch.
func (fr FrameRange) IsAllFrames() bool { return fr.allFrames }

// TimeStep returns the selected step. It panics for an all-frames range.
func (fr FrameRange) TimeStep() int {
	if fr.allFrames {
		exceptions.Panicf("minibatch.FrameRange: TimeStep called on an all-frames range")
	}
	return fr.t
}

// ColumnRange resolves the range against a layout into a starting column
// and a column count within a matrix of totalCols columns. A nil layout
// means the value is time-invariant and the whole width is selected.
func (fr FrameRange) ColumnRange(layout *Layout, totalCols int) (start, num int) {
	if layout == nil || fr.allFrames {
		return 0, totalCols
	}
	if fr.t >= layout.NumTimeSteps() {
		exceptions.Panicf("minibatch.FrameRange: time step %d out of range for %d steps", fr.t, layout.NumTimeSteps())
	}
	n := layout.NumParallelSequences()
	return fr.t * n, n
}

// Slice returns the view of m selected by the range under the given layout.
func Slice[T constraints.Float](m *matrix.Matrix[T], layout *Layout, fr FrameRange) *matrix.Matrix[T] {
	start, num := fr.ColumnRange(layout, m.Cols())
	if start == 0 && num == m.Cols() {
		return m
	}
	return m.ColumnSlice(start, num)
}

// MaskToZero zeroes the gap columns of m that fall inside the range.
// Masking is idempotent and a no-op for gap-free layouts.
func MaskToZero[T constraints.Float](m *matrix.Matrix[T], layout *Layout, fr FrameRange) {
	if layout == nil || !layout.HasGaps() {
		return
	}
	if m.Cols() != layout.Cols() {
		exceptions.Panicf("minibatch.MaskToZero: matrix has %d columns but layout spans %d", m.Cols(), layout.Cols())
	}
	start, num := fr.ColumnRange(layout, m.Cols())
	for col := start; col < start+num; col++ {
		if layout.IsGapCol(col) {
			m.ColumnSlice(col, 1).SetAll(0)
		}
	}
}
