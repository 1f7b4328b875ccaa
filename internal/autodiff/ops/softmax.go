package ops

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// SoftmaxOp records a row-wise softmax over a 2D tensor.
//
// The Jacobian-vector product simplifies to
//
//	grad_x[i] = y[i] * (grad_y[i] - Σ_j grad_y[j]*y[j])
//
// computed per row, with y the saved softmax output.
type SoftmaxOp struct{ unaryOp }

// NewSoftmaxOp creates a SoftmaxOp.
func NewSoftmaxOp(input, output *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{unaryOp{input: input, output: output}}
}

// Backward computes the softmax input gradient row by row.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.output.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax backward: want 2D output, got %v", shape))
	}
	rows, cols := shape[0], shape[1]

	// Fresh zero tensor with the right shape.
	grad := backend.MulScalar(op.output, 0)
	gd := grad.AsFloat32()
	yd := op.output.AsFloat32()
	ogd := outputGrad.AsFloat32()

	for r := 0; r < rows; r++ {
		base := r * cols
		var dot float32
		for j := 0; j < cols; j++ {
			dot += ogd[base+j] * yd[base+j]
		}
		for j := 0; j < cols; j++ {
			gd[base+j] = yd[base+j] * (ogd[base+j] - dot)
		}
	}
	return []*tensor.RawTensor{grad}
}
