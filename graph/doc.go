// Copyright 2026 The CNTK Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for building and running the
// tensor-operation layer of a computation graph.
//
// A graph is a DAG of Node values: Parameter and Input leaves feeding an
// operation catalogue of broadcasting arithmetic (Plus, Minus, Scale,
// Negate, the ElementTimes family), matrix products (Times, TransposeTimes,
// StrideTimes, KhatriRaoProduct), cosine similarities (CosDistance,
// CosDistanceWithNegativeSamples), and reductions (SumElements,
// SumColumnElements, Transpose, Diagonal).
//
// Running a graph is a fixed sequence: Resolve performs two-pass shape
// inference and fails with ErrShape or ErrInvalidArgument on topology
// errors; Forward evaluates values over a FrameRange; Backward accumulates
// gradients in reverse order, leasing scratch matrices from a Pool.
//
// Example:
//
//	w := graph.NewParameter[float64]("w", 3, 2, matrix.CPU)
//	x := graph.NewInput[float64]("x", 2, matrix.CPU)
//	x.Bind(data, layout)
//	y := graph.NewTimes("y", w, x)
//	loss := graph.NewSumElements("loss", y)
//
//	order := graph.TopoSort[float64](loss)
//	if err := graph.Resolve[float64](loss); err != nil {
//	    return err
//	}
//	p := graph.NewPool[float64]()
//	graph.Forward(order, p, graph.AllFrames())
//	graph.ResetGradients(order)
//	loss.Gradient().SetAll(1)
//	graph.Backward(order, p, graph.AllFrames())
package graph
