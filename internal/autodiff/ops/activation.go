package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// unaryOp is the shared state of the single-input operations.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensor.
func (op *unaryOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *unaryOp) Output() *tensor.RawTensor { return op.output }

// ReLUOp records output = max(0, x).
//
// d(ReLU(x))/dx is 1 where x > 0 and 0 elsewhere.
type ReLUOp struct{ unaryOp }

// NewReLUOp creates a ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unaryOp{input: input, output: output}}
}

// Backward masks the upstream gradient with the positive-input mask.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := backend.MulScalar(op.input, 0) // zeros with the input's shape
	maskData := mask.AsFloat32()
	for i, v := range op.input.AsFloat32() {
		if v > 0 {
			maskData[i] = 1
		}
	}
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

// SigmoidOp records output = σ(x).
//
// The derivative is expressed through the saved output: σ'(x) = σ(x)(1-σ(x)).
type SigmoidOp struct{ unaryOp }

// NewSigmoidOp creates a SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input: input, output: output}}
}

// Backward computes grad * y * (1 - y).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY := backend.AddScalar(backend.MulScalar(y, -1), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Mul(y, oneMinusY))}
}

// TanhOp records output = tanh(x).
//
// tanh'(x) = 1 - tanh(x)².
type TanhOp struct{ unaryOp }

// NewTanhOp creates a TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input: input, output: output}}
}

// Backward computes grad * (1 - y²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY2 := backend.AddScalar(backend.MulScalar(backend.Mul(y, y), -1), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, oneMinusY2)}
}

// ExpOp records output = exp(x); the derivative is the output itself.
type ExpOp struct{ unaryOp }

// NewExpOp creates an ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input: input, output: output}}
}

// Backward computes grad * exp(x) using the saved output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp records output = log(x).
type LogOp struct{ unaryOp }

// NewLogOp creates a LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input: input, output: output}}
}

// Backward computes grad / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}
