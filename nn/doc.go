// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks: layers, activations,
// losses, weight initialization and checkpointing.
//
// # Overview
//
// This package contains:
//   - Linear: fully connected layer with Xavier-initialized weights
//   - ReLU, Sigmoid, Tanh: element-wise activations
//   - Sequential: module container that chains layers
//   - CrossEntropyLoss: fused softmax + NLL for classification
//   - MSELoss: mean squared error for regression
//   - Checkpoint: save and restore training state
//
// # Building a Model
//
//	import (
//	    "math/rand"
//
//	    "github.com/gradlet-ml/gradlet/autodiff"
//	    "github.com/gradlet-ml/gradlet/backend/cpu"
//	    "github.com/gradlet-ml/gradlet/nn"
//	)
//
//	type B = *autodiff.Backend[*cpu.Backend]
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    rng := rand.New(rand.NewSource(42))
//
//	    model := nn.NewSequential[B](
//	        nn.NewLinear(784, 128, rng, backend),
//	        nn.NewReLU[B](),
//	        nn.NewLinear(128, 10, rng, backend),
//	    )
//
//	    criterion := nn.NewCrossEntropyLoss(backend)
//
//	    backend.Tape().StartRecording()
//	    logits := model.Forward(images)          // [batch, 784] -> [batch, 10]
//	    loss := criterion.Forward(logits, labels)
//	    grads := autodiff.Backward(loss, backend)
//	    _ = grads
//	}
//
// # State Dictionaries
//
// Every Module exports its parameters as a flat map of named tensors.
// Sequential prefixes each entry with the module index, so a two-layer
// network produces "0.weight", "0.bias", "2.weight", "2.bias":
//
//	state := model.StateDict()
//	err := other.LoadStateDict(state) // copies values, keeps buffers
//
// LoadStateDict copies values into the existing parameter buffers rather
// than replacing them, so optimizer and tape references stay valid.
//
// # Checkpointing
//
// A Checkpoint bundles model parameters, optimizer state and run metadata
// into one .gradlet file:
//
//	ckpt := &nn.Checkpoint[B]{Model: model, Optimizer: optimizer, Epoch: 3}
//	err := ckpt.Save("checkpoints/epoch-003.gradlet")
//
//	restored, err := nn.LoadCheckpoint(path, backend, model, optimizer)
//
// Pass a nil optimizer to load a model for inference only.
package nn
