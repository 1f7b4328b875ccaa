// Package ops defines the differentiable operations recorded on the gradient
// tape. Each operation keeps references to its input and output RawTensors
// from the forward pass and knows how to turn an upstream gradient into
// gradients for its inputs.
package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// Operation is one node of the recorded computation.
type Operation interface {
	// Backward computes gradients for the inputs given the gradient of the
	// loss with respect to this operation's output. The returned slice is
	// positionally aligned with Inputs().
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the forward-pass input tensors.
	Inputs() []*tensor.RawTensor

	// Output returns the forward-pass output tensor.
	Output() *tensor.RawTensor
}
