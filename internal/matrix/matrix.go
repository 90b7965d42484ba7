// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// Device represents the compute device a matrix is placed on.
type Device int

// Supported compute devices. Placement policy lives outside this package;
// the tag only travels with the data.
const (
	CPU Device = iota
	GPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// Format is the storage discriminator of a matrix.
//
// SparseBlockCol is a lossless retag over the same dense backing: gradient
// accumulation paths switch a matrix to it when a sparse peer makes the
// result column-sparse, and the storage collaborator may exploit the tag.
// Kernels in this package always operate on the dense backing.
type Format int

// Supported storage formats.
const (
	Dense Format = iota
	SparseBlockCol
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case Dense:
		return "Dense"
	case SparseBlockCol:
		return "SparseBlockCol"
	default:
		return "Unknown"
	}
}

// Matrix is a two-dimensional numeric array in column-major layout: a column
// is contiguous, so column ranges slice without copying. The element type is
// float32 or float64, fixed per graph at construction time.
//
// A Matrix is either a root (owns its backing slice) or a view obtained from
// ColumnSlice/Reshaped (shares the root's backing). Views may be written
// through; they cannot be resized.
type Matrix[T constraints.Float] struct {
	data   []T
	rows   int
	cols   int
	device Device
	format Format
	view   bool
}

// New creates a zero-filled rows×cols dense matrix.
func New[T constraints.Float](rows, cols int, device Device) *Matrix[T] {
	if rows < 0 || cols < 0 {
		exceptions.Panicf("matrix.New: negative dimensions %dx%d", rows, cols)
	}
	return &Matrix[T]{
		data:   make([]T, rows*cols),
		rows:   rows,
		cols:   cols,
		device: device,
	}
}

// Ones creates a rows×cols matrix filled with ones.
func Ones[T constraints.Float](rows, cols int, device Device) *Matrix[T] {
	m := New[T](rows, cols, device)
	for i := range m.data {
		m.data[i] = 1
	}
	return m
}

// FromRows creates a matrix from row-major input, the natural way to write
// literals in tests. The storage itself stays column-major.
func FromRows[T constraints.Float](rows [][]T, device Device) *Matrix[T] {
	r := len(rows)
	c := 0
	if r > 0 {
		c = len(rows[0])
	}
	m := New[T](r, c, device)
	for i := 0; i < r; i++ {
		if len(rows[i]) != c {
			exceptions.Panicf("matrix.FromRows: ragged input, row %d has %d elements, want %d", i, len(rows[i]), c)
		}
		for j := 0; j < c; j++ {
			m.Set(i, j, rows[i][j])
		}
	}
	return m
}

// Rows returns the row count.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix[T]) Cols() int { return m.cols }

// NumElements returns rows*cols.
func (m *Matrix[T]) NumElements() int { return m.rows * m.cols }

// IsEmpty reports whether the matrix holds no elements (a dimension is zero,
// meaning "not yet resolved" during shape inference).
func (m *Matrix[T]) IsEmpty() bool { return m.rows == 0 || m.cols == 0 }

// Device returns the placement tag.
func (m *Matrix[T]) Device() Device { return m.device }

// Format returns the storage discriminator.
func (m *Matrix[T]) Format() Format { return m.format }

// SwitchFormat retags the matrix storage. The conversion is lossless in both
// directions; contents are preserved.
func (m *Matrix[T]) SwitchFormat(f Format) { m.format = f }

// MoveTo changes the placement tag. Transfer orchestration is the storage
// collaborator's concern; the in-process backing is reused as is.
func (m *Matrix[T]) MoveTo(device Device) { m.device = device }

// At returns element (i, j).
func (m *Matrix[T]) At(i, j int) T {
	m.boundsCheck(i, j)
	return m.data[j*m.rows+i]
}

// Set writes element (i, j).
func (m *Matrix[T]) Set(i, j int, v T) {
	m.boundsCheck(i, j)
	m.data[j*m.rows+i] = v
}

func (m *Matrix[T]) boundsCheck(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		exceptions.Panicf("matrix: index (%d, %d) out of range for %dx%d", i, j, m.rows, m.cols)
	}
}

// Get00 returns element (0, 0) of a scalar-carrying matrix.
func (m *Matrix[T]) Get00() T {
	if m.IsEmpty() {
		exceptions.Panicf("matrix.Get00: empty matrix")
	}
	return m.data[0]
}

// Data exposes the column-major backing slice.
func (m *Matrix[T]) Data() []T { return m.data }

// ColumnSlice returns a zero-copy view of cols [start, start+num).
// Writes through the view are visible in the parent.
func (m *Matrix[T]) ColumnSlice(start, num int) *Matrix[T] {
	if start < 0 || num < 0 || start+num > m.cols {
		exceptions.Panicf("matrix.ColumnSlice: range [%d, %d) out of %d columns", start, start+num, m.cols)
	}
	return &Matrix[T]{
		data:   m.data[start*m.rows : (start+num)*m.rows],
		rows:   m.rows,
		cols:   num,
		device: m.device,
		format: m.format,
		view:   true,
	}
}

// Reshaped returns a zero-copy view with the same elements rearranged as
// rows×cols, reading the backing in column-major order.
func (m *Matrix[T]) Reshaped(rows, cols int) *Matrix[T] {
	if rows*cols != m.rows*m.cols {
		exceptions.Panicf("matrix.Reshaped: cannot view %dx%d as %dx%d", m.rows, m.cols, rows, cols)
	}
	return &Matrix[T]{
		data:   m.data,
		rows:   rows,
		cols:   cols,
		device: m.device,
		format: m.format,
		view:   true,
	}
}

// Resize reallocates the matrix to rows×cols. Contents are not preserved;
// the result is zero-filled. Resizing to the current dimensions keeps the
// backing and its contents. Views cannot be resized.
func (m *Matrix[T]) Resize(rows, cols int) {
	if rows == m.rows && cols == m.cols {
		return
	}
	if m.view {
		exceptions.Panicf("matrix.Resize: cannot resize a %dx%d view to %dx%d", m.rows, m.cols, rows, cols)
	}
	if rows < 0 || cols < 0 {
		exceptions.Panicf("matrix.Resize: negative dimensions %dx%d", rows, cols)
	}
	m.data = make([]T, rows*cols)
	m.rows = rows
	m.cols = cols
}

// SetValue copies the contents of other into m, resizing if necessary.
func (m *Matrix[T]) SetValue(other *Matrix[T]) {
	if m.rows != other.rows || m.cols != other.cols {
		m.Resize(other.rows, other.cols)
	}
	copy(m.data, other.data)
}

// SetAll fills every element with v.
func (m *Matrix[T]) SetAll(v T) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Clone returns a deep copy with its own backing.
func (m *Matrix[T]) Clone() *Matrix[T] {
	c := New[T](m.rows, m.cols, m.device)
	copy(c.data, m.data)
	c.format = m.format
	return c
}

// SameDims reports whether m and other have identical dimensions.
func (m *Matrix[T]) SameDims(other *Matrix[T]) bool {
	return m.rows == other.rows && m.cols == other.cols
}
