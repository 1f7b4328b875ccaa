package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// ReshapeOp records a reshape. Reshapes must be on the tape: a parameter that
// is reshaped before use (a bias broadcast to [1, n], say) would otherwise
// never see its gradient.
type ReshapeOp struct{ unaryOp }

// NewReshapeOp creates a ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unaryOp{input: input, output: output}}
}

// Backward reshapes the gradient back to the input's shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// TransposeOp records a dimension permutation. Like reshape it must be taped,
// or gradients computed for the transposed view would never reach the
// original tensor — a Linear layer transposes its weight on every forward
// pass, so this is the difference between training and silently not training.
type TransposeOp struct {
	unaryOp
	axes []int
}

// NewTransposeOp creates a TransposeOp for the given permutation.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{unaryOp{input: input, output: output}, axes}
}

// Backward applies the inverse permutation to the gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}
