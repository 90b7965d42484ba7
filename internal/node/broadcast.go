// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package node

// bcPattern classifies how an operand's shape relates to the output shape
// of a broadcasting binary op. Matching tries the patterns in the order
// they are declared; the first hit wins.
type bcPattern int

const (
	bcEqual       bcPattern = iota // same dimensions
	bcScalar                       // 1×1, feeds every element
	bcColVector                    // rows×1, repeated across columns
	bcRowVector                    // 1×cols, repeated across rows
	bcTileColumns                  // rows×k with k dividing cols, tiled
	bcNone                         // incompatible
)

func (p bcPattern) String() string {
	switch p {
	case bcEqual:
		return "equal"
	case bcScalar:
		return "scalar"
	case bcColVector:
		return "column-vector"
	case bcRowVector:
		return "row-vector"
	case bcTileColumns:
		return "tiled-columns"
	}
	return "incompatible"
}

func matchPattern(outRows, outCols, rows, cols int, allowTiling bool) bcPattern {
	switch {
	case rows == outRows && cols == outCols:
		return bcEqual
	case rows == 1 && cols == 1:
		return bcScalar
	case rows == outRows && cols == 1:
		return bcColVector
	case rows == 1 && cols == outCols:
		return bcRowVector
	case allowTiling && rows == outRows && cols > 0 && outCols%cols == 0:
		return bcTileColumns
	}
	return bcNone
}

// validateBinaryZip implements the shared shape protocol of broadcasting
// binary ops: cross-infer unknown operand dimensions, inherit the unique
// input layout, size the output to the elementwise maximum, and on the
// final pass demand that both operands broadcast to it.
func (b *base[T]) validateBinaryZip(finalPass, allowTiling bool) error {
	i0, i1 := b.inputs[0], b.inputs[1]
	r0, c0 := i0.Value().Rows(), i0.Value().Cols()
	r1, c1 := i1.Value().Rows(), i1.Value().Cols()

	i0.InferDims(r1, c1)
	i1.InferDims(r0, c0)
	r0, c0 = i0.Value().Rows(), i0.Value().Cols()
	r1, c1 = i1.Value().Rows(), i1.Value().Cols()

	if err := b.inheritLayout(); err != nil {
		return err
	}

	rows, cols := max(r0, r1), max(c0, c1)
	if rows > 0 && cols > 0 {
		b.value.Resize(rows, cols)
	}

	if !finalPass {
		return nil
	}
	if rows == 0 || cols == 0 {
		return shapeErrorf("%s %q: operand dimensions unresolved (%dx%d and %dx%d)", b.op, b.name, r0, c0, r1, c1)
	}
	for i, in := range b.inputs[:2] {
		v := in.Value()
		p := matchPattern(rows, cols, v.Rows(), v.Cols(), allowTiling)
		if p == bcNone {
			return shapeErrorf("%s %q: input %d is %dx%d, does not broadcast to %dx%d", b.op, b.name, i, v.Rows(), v.Cols(), rows, cols)
		}
		if p == bcTileColumns && b.layout != nil {
			return shapeErrorf("%s %q: input %d is %dx%d, column tiling to %dx%d is not valid for minibatch data", b.op, b.name, i, v.Rows(), v.Cols(), rows, cols)
		}
	}
	return nil
}
