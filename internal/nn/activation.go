package nn

import (
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// ReLU applies f(x) = max(0, x) element-wise. The workhorse hidden-layer
// activation: cheap, and its gradient does not vanish for positive inputs.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

// Forward applies the rectifier.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// Parameters returns nil; ReLU has no trainable parameters.
func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

// StateDict returns an empty map.
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor { return map[string]*tensor.RawTensor{} }

// LoadStateDict is a no-op.
func (r *ReLU[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Sigmoid applies σ(x) = 1/(1+e^-x), squashing values into (0, 1).
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return &Sigmoid[B]{} }

// Forward applies the logistic function.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Sigmoid()
}

// Parameters returns nil; Sigmoid has no trainable parameters.
func (s *Sigmoid[B]) Parameters() []*Parameter[B] { return nil }

// StateDict returns an empty map.
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor { return map[string]*tensor.RawTensor{} }

// LoadStateDict is a no-op.
func (s *Sigmoid[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Tanh applies the hyperbolic tangent, squashing values into (-1, 1).
// Zero-centered, which historically made it the default before ReLU.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] { return &Tanh[B]{} }

// Forward applies tanh.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Tanh()
}

// Parameters returns nil; Tanh has no trainable parameters.
func (t *Tanh[B]) Parameters() []*Parameter[B] { return nil }

// StateDict returns an empty map.
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor { return map[string]*tensor.RawTensor{} }

// LoadStateDict is a no-op.
func (t *Tanh[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
