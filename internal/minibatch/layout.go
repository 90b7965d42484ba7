// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package minibatch describes how the columns of a minibatch matrix map onto
// parallel sequences and time steps, and which columns are padding.
//
// A minibatch packs numParallel sequences side by side: the column for
// sequence s at time t is t*numParallel + s. Sequences of unequal length
// leave gap columns, which carry no data and must not contribute to
// reductions.
package minibatch

import "github.com/gomlx/exceptions"

// Layout records the sequence/time-step geometry of a minibatch and which of
// its columns are gaps.
type Layout struct {
	numParallel int
	numSteps    int
	gaps        []bool
	numGaps     int
}

// NewLayout returns a layout for numParallel sequences of numSteps time
// steps each, with no gaps marked.
func NewLayout(numParallel, numSteps int) *Layout {
	if numParallel <= 0 || numSteps <= 0 {
		exceptions.Panicf("minibatch.NewLayout: need positive dimensions, got %d parallel sequences and %d steps", numParallel, numSteps)
	}
	return &Layout{
		numParallel: numParallel,
		numSteps:    numSteps,
		gaps:        make([]bool, numParallel*numSteps),
	}
}

// NumParallelSequences reports how many sequences run side by side.
func (l *Layout) NumParallelSequences() int { return l.numParallel }

// NumTimeSteps reports the number of time steps in the minibatch.
func (l *Layout) NumTimeSteps() int { return l.numSteps }

// Cols reports the total number of matrix columns the layout spans.
func (l *Layout) Cols() int { return l.numParallel * l.numSteps }

// MarkGap flags the column of sequence s at time t as padding.
func (l *Layout) MarkGap(s, t int) {
	if s < 0 || s >= l.numParallel || t < 0 || t >= l.numSteps {
		exceptions.Panicf("minibatch.MarkGap: (%d, %d) out of range for %dx%d layout", s, t, l.numParallel, l.numSteps)
	}
	col := t*l.numParallel + s
	if !l.gaps[col] {
		l.gaps[col] = true
		l.numGaps++
	}
}

// IsGap reports whether the column of sequence s at time t is padding.
func (l *Layout) IsGap(s, t int) bool {
	return l.gaps[t*l.numParallel+s]
}

// IsGapCol reports whether matrix column col is padding.
func (l *Layout) IsGapCol(col int) bool { return l.gaps[col] }

// HasGaps reports whether any column is padding.
func (l *Layout) HasGaps() bool { return l.numGaps > 0 }

// Same reports whether two layouts describe the same geometry and gaps.
// Two nil layouts compare equal.
func (l *Layout) Same(other *Layout) bool {
	if l == other {
		return true
	}
	if l == nil || other == nil {
		return false
	}
	if l.numParallel != other.numParallel || l.numSteps != other.numSteps || l.numGaps != other.numGaps {
		return false
	}
	for i, g := range l.gaps {
		if g != other.gaps[i] {
			return false
		}
	}
	return true
}
