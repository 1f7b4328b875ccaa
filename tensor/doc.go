// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the core tensor type and the Backend interface
// every compute implementation satisfies.
//
// # Overview
//
// Two layers make up the design:
//   - RawTensor: an untyped buffer with shape, strides, dtype and device
//   - Tensor[T, B]: a typed, backend-bound front over a RawTensor
//
// Tensor methods never compute anything themselves; every operation is
// dispatched through the Backend, which is how the same model code runs on
// the plain CPU backend or under the autodiff decorator.
//
// # Creating Tensors
//
//	import (
//	    "github.com/gradlet-ml/gradlet/backend/cpu"
//	    "github.com/gradlet-ml/gradlet/tensor"
//	)
//
//	backend := cpu.New()
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
//	z := x.Add(y).MulScalar(0.5)
//
// # Shapes and Broadcasting
//
// Binary operations broadcast NumPy-style: missing leading axes are assumed
// to be 1, and size-1 axes stretch to match. Adding a [1, 10] bias row to a
// [64, 10] activation matrix is the everyday case:
//
//	out := activations.Add(bias) // [64, 10] + [1, 10] -> [64, 10]
//
// # Element Types
//
// Supported element types are float32 for all arithmetic, int32 for class
// labels and indices, and uint8 for raw image bytes. Gradient-producing
// operations require float32.
package tensor
