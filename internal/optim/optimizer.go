// Package optim implements the optimization algorithms used in training:
// SGD with optional momentum, and Adam.
//
// Optimizers consume the gradient map produced by autodiff.Backward and
// update parameter buffers in place, so the tensors the tape knows about
// keep their identity across steps.
//
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
package optim

import (
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Optimizer is implemented by all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient in
	// the map. Parameters absent from the map are left untouched.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the stored gradient on every parameter. Call once
	// per training step, before the next backward pass.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32

	// SetLR changes the learning rate, for manual scheduling.
	SetLR(lr float32)

	// StateDict exports internal buffers (momentum, moments) by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores internal buffers from a state dictionary.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// gradientFor looks up a parameter's gradient by tensor identity.
// Nil means the parameter took no part in the recorded computation.
func gradientFor[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
