package nn

import (
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Parameter is a trainable tensor, typically a layer's weight or bias.
//
// The wrapped tensor's RawTensor must stay stable across training steps:
// the autodiff tape keys gradients by tensor identity, and the optimizer
// updates the buffer in place.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter wraps an initialized tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name, e.g. "weight" or "bias".
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Grad returns the gradient from the last backward pass, or nil if none
// has been computed.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] { return p.grad }

// SetGrad stores the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) { p.grad = grad }

// ZeroGrad drops the stored gradient. Call before each training step so
// stale gradients from the previous batch cannot leak into the update.
func (p *Parameter[B]) ZeroGrad() { p.grad = nil }
