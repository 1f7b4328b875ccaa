package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// ScaleOp records output = x * s for a scalar s.
type ScaleOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	scalar float32
}

// NewScaleOp creates a ScaleOp.
func NewScaleOp(input, output *tensor.RawTensor, scalar float32) *ScaleOp {
	return &ScaleOp{input: input, output: output, scalar: scalar}
}

// Backward scales the upstream gradient by the same constant.
func (op *ScaleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns the input tensor.
func (op *ScaleOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *ScaleOp) Output() *tensor.RawTensor { return op.output }

// ShiftOp records output = x + s for a scalar s. The constant vanishes under
// differentiation, so the gradient passes through unchanged.
type ShiftOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewShiftOp creates a ShiftOp.
func NewShiftOp(input, output *tensor.RawTensor) *ShiftOp {
	return &ShiftOp{input: input, output: output}
}

// Backward passes the upstream gradient through.
func (op *ShiftOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// Inputs returns the input tensor.
func (op *ShiftOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *ShiftOp) Output() *tensor.RawTensor { return op.output }
