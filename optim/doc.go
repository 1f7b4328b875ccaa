// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural
// networks.
//
// # Overview
//
// This package contains:
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation with bias correction
//   - Optimizer: the interface both implement
//
// # Basic Usage
//
//	import (
//	    "github.com/gradlet-ml/gradlet/autodiff"
//	    "github.com/gradlet-ml/gradlet/backend/cpu"
//	    "github.com/gradlet-ml/gradlet/optim"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//
//	    optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	        LR:       0.1,
//	        Momentum: 0.9,
//	    }, backend)
//
//	    for epoch := 0; epoch < 10; epoch++ {
//	        backend.Tape().Clear()
//	        backend.Tape().StartRecording()
//
//	        loss := criterion.Forward(model.Forward(x), y)
//	        grads := autodiff.Backward(loss, backend)
//
//	        optimizer.Step(grads)
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// Step consumes the gradient map returned by autodiff.Backward, looking up
// each parameter by the identity of its RawTensor. Updates are applied in
// place on the parameter buffers, which is what keeps those identities
// stable from one step to the next.
//
// # Choosing an Optimizer
//
// SGD with momentum is the classic choice and what the MNIST walkthrough
// uses; a learning rate around 0.1 works well there. Adam adapts a per-
// element step size and usually needs a much smaller rate:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	}, backend)
//
// Both serialize their state through StateDict/LoadStateDict so a resumed
// run continues with the same velocities or moments.
package optim
