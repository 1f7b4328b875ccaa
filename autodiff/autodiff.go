// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation by
// wrapping any compute backend with a gradient tape.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	backend.Tape().StartRecording()
//	y := x.Mul(x)
//	grads := autodiff.Backward(y, backend)
//	dx := grads[x.Raw()]
package autodiff

import (
	"github.com/gradlet-ml/gradlet/internal/autodiff"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Backend is the autodiff decorator over an inner compute backend.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New wraps a backend with gradient tracking.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// Tape records operations during the forward pass.
type Tape = autodiff.Tape

// NewTape creates an empty, non-recording tape.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// Gradients maps forward-pass tensors to their gradients.
type Gradients = autodiff.Gradients

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to every recorded tensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) Gradients {
	return autodiff.Backward(t, backend)
}
