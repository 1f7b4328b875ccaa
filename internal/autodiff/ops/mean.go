package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// MeanOp records a full reduction to the scalar mean.
//
// Every input element contributes 1/N to the mean, so the backward pass
// spreads grad/N uniformly over the input's shape.
type MeanOp struct{ unaryOp }

// NewMeanOp creates a MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{unaryOp{input: input, output: output}}
}

// Backward broadcasts grad/N back over the input.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.input.NumElements()
	scale := outputGrad.AsFloat32()[0] / float32(n)
	grad := backend.AddScalar(backend.MulScalar(op.input, 0), scale)
	return []*tensor.RawTensor{grad}
}

// SumOp records a full reduction to the scalar sum; the gradient broadcasts
// unchanged over the input.
type SumOp struct{ unaryOp }

// NewSumOp creates a SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input: input, output: output}}
}

// Backward broadcasts the scalar gradient over the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	scale := outputGrad.AsFloat32()[0]
	grad := backend.AddScalar(backend.MulScalar(op.input, 0), scale)
	return []*tensor.RawTensor{grad}
}
