// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// DType is the constraint for tensor element types.
type DType = tensor.DType

// DataType is the runtime tag of a tensor's element type.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Uint8   DataType = tensor.Uint8
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape holds a tensor's dimensions, e.g. Shape{2, 3} for a 2x3 matrix.
type Shape = tensor.Shape

// BroadcastShapes computes the NumPy-style broadcast result of two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// Backend is the compute interface all tensor operations go through.
type Backend = tensor.Backend

// RawTensor is the untyped tensor representation: buffer, shape, strides
// and runtime type information.
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Tensor is the generic, type-safe tensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// New wraps a RawTensor with a typed front.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// FromSlice creates a tensor by copying data into fresh storage.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a constant value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a float32 tensor drawn from N(0, 1). A nil rng uses the
// global source.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[float32, B] {
	return tensor.Randn[B](shape, rng, b)
}

// Rand creates a float32 tensor with values uniform in [0, 1).
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[float32, B] {
	return tensor.Rand[B](shape, rng, b)
}

// Arange creates a 1D int32 tensor with values [start, end).
func Arange[B Backend](start, end int32, b B) *Tensor[int32, B] {
	return tensor.Arange[B](start, end, b)
}
