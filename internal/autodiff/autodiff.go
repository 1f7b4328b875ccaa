// Package autodiff implements reverse-mode automatic differentiation as a
// decorator over any compute backend.
//
// Backend[B] wraps an inner tensor.Backend, forwards every operation to it,
// and — while the tape is recording — appends an ops.Operation describing the
// call. Backward replays the tape in reverse and returns a gradient for every
// tensor that influenced the output.
//
//	base := cpu.New()
//	be := autodiff.New(base)
//	be.Tape().StartRecording()
//	y := x.Mul(x)                 // recorded
//	grads := autodiff.Backward(y, be)
//	_ = grads[x.Raw()]            // dy/dx
package autodiff

import (
	"github.com/gradlet-ml/gradlet/internal/autodiff/ops"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Backend decorates an inner backend with gradient tracking.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *Tape
}

// New wraps a backend with autodiff capabilities.
func New[B tensor.Backend](inner B) *Backend[B] {
	return &Backend[B]{inner: inner, tape: NewTape()}
}

// Tape returns the gradient tape for recording control.
func (b *Backend[B]) Tape() *Tape { return b.tape }

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B { return b.inner }

// Name returns the decorated backend name.
func (b *Backend[B]) Name() string { return "Autodiff(" + b.inner.Name() + ")" }

// Device returns the inner backend's device.
func (b *Backend[B]) Device() tensor.Device { return b.inner.Device() }

// Add performs element-wise addition and records it.
func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

// Sub performs element-wise subtraction and records it.
func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

// Mul performs element-wise multiplication and records it.
func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

// Div performs element-wise division and records it.
func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, out))
	return out
}

// MatMul performs matrix multiplication and records it.
func (b *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

// AddScalar adds a constant and records it.
func (b *Backend[B]) AddScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	out := b.inner.AddScalar(x, s)
	b.tape.Record(ops.NewShiftOp(x, out))
	return out
}

// MulScalar scales by a constant and records it.
func (b *Backend[B]) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	out := b.inner.MulScalar(x, s)
	b.tape.Record(ops.NewScaleOp(x, out, s))
	return out
}

// Exp computes the element-wise exponential and records it.
func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, out))
	return out
}

// Log computes the element-wise logarithm and records it.
func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, out))
	return out
}

// Sqrt computes the element-wise square root. Not recorded: it appears only
// in optimizer update math, which runs outside the taped forward pass.
func (b *Backend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sqrt(x)
}

// ReLU applies the rectifier and records it.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, out))
	return out
}

// Sigmoid applies the logistic function and records it.
func (b *Backend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sigmoid(x)
	b.tape.Record(ops.NewSigmoidOp(x, out))
	return out
}

// Tanh applies the hyperbolic tangent and records it.
func (b *Backend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Tanh(x)
	b.tape.Record(ops.NewTanhOp(x, out))
	return out
}

// Softmax applies a row-wise softmax and records it.
func (b *Backend[B]) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Softmax(x)
	b.tape.Record(ops.NewSoftmaxOp(x, out))
	return out
}

// CrossEntropy computes the classification loss and records the fused op.
func (b *Backend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.CrossEntropy(logits, targets)
	b.tape.Record(ops.NewCrossEntropyOp(logits, targets, out))
	return out
}

// Sum reduces to the scalar sum and records it.
func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, out))
	return out
}

// Mean reduces to the scalar mean and records it.
func (b *Backend[B]) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mean(x)
	b.tape.Record(ops.NewMeanOp(x, out))
	return out
}

// SumDim sums along a dimension. Not recorded: it is used by the backward
// passes themselves (broadcast reduction) and by metrics, never inside a
// taped forward pass.
func (b *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.SumDim(x, dim, keepDim)
}

// Argmax returns prediction indices. Not differentiable, never recorded.
func (b *Backend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

// Reshape changes the shape and records it so gradients reach the original.
func (b *Backend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(x, shape)
	b.tape.Record(ops.NewReshapeOp(x, out))
	return out
}

// Transpose permutes dimensions and records the permutation.
func (b *Backend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(x.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	out := b.inner.Transpose(x, axes...)
	b.tape.Record(ops.NewTransposeOp(x, out, axes))
	return out
}
