package ops

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// CrossEntropyOp records the fused softmax + negative-log-likelihood loss.
//
// Forward (computed by the backend):
//
//	loss = mean(-log_softmax(logits)[target])
//
// Backward uses the well-known closed form, the reason the two operations are
// fused in every serious framework:
//
//	∂L/∂logits[b,i] = (softmax(logits[b])[i] - 1{i == target[b]}) / batch
//
// Targets are class indices and receive no gradient.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor // [batch, classes]
	targets *tensor.RawTensor // [batch] int32
	output  *tensor.RawTensor // scalar loss
}

// NewCrossEntropyOp creates a CrossEntropyOp.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Inputs returns the differentiable inputs (logits only).
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the scalar loss tensor.
func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the gradient with respect to the logits.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy backward: want 2D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, tensor.Float32, op.logits.Device())
	if err != nil {
		panic(err)
	}

	ld := op.logits.AsFloat32()
	td := op.targets.AsInt32()
	gd := grad.AsFloat32()
	gradScale := outputGrad.AsFloat32()[0]

	probs := make([]float32, classes)
	for b := 0; b < batch; b++ {
		row := ld[b*classes : (b+1)*classes]
		softmaxInto(row, probs)

		target := int(td[b])
		for i := 0; i < classes; i++ {
			g := probs[i]
			if i == target {
				g -= 1.0
			}
			gd[b*classes+i] = gradScale * g / float32(batch)
		}
	}
	return []*tensor.RawTensor{grad}
}

// softmaxInto writes a max-shifted softmax of row into dst.
func softmaxInto(row, dst []float32) {
	maxVal := row[0]
	for _, v := range row[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float32
	for i, v := range row {
		dst[i] = math32.Exp(v - maxVal)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}
