package nn

import (
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// MSELoss computes mean squared error: mean((predictions - targets)²).
// Used for regression and for toy problems like XOR where targets are
// continuous values rather than class indices.
type MSELoss[B tensor.Backend] struct{}

// NewMSELoss creates an MSE criterion.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] {
	return &MSELoss[B]{}
}

// Forward returns the scalar loss, shape [1].
//
// The computation is built from Sub, Mul and Mean so every step lands on
// the autodiff tape; the gradient 2(p-t)/N falls out of the chain rule
// without a dedicated backward rule.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic("MSELoss: predictions and targets must have the same shape")
	}
	diff := predictions.Sub(targets)
	return diff.Mul(diff).Mean()
}

// Parameters returns nil; loss functions have no trainable parameters.
func (m *MSELoss[B]) Parameters() []*Parameter[B] { return nil }
