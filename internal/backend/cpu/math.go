package cpu

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Exp computes the element-wise exponential.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, math32.Exp)
}

// Log computes the element-wise natural logarithm.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, math32.Log)
}

// Sqrt computes the element-wise square root.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, math32.Sqrt)
}

// ReLU computes max(0, x) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (c *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, func(v float32) float32 {
		return 1.0 / (1.0 + math32.Exp(-v))
	})
}

// Tanh computes the element-wise hyperbolic tangent.
func (c *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, math32.Tanh)
}

// Softmax computes a numerically stable softmax along the last dimension of a
// 2D tensor. Each row is max-shifted before exponentiation.
func (c *Backend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: want 2D [batch, classes], got %v", shape))
	}
	rows, cols := shape[0], shape[1]

	out := c.alloc(shape, tensor.Float32)
	xd := x.AsFloat32()
	od := out.AsFloat32()
	for r := 0; r < rows; r++ {
		row := xd[r*cols : (r+1)*cols]
		dst := od[r*cols : (r+1)*cols]
		softmaxRow(row, dst)
	}
	return out
}

// CrossEntropy computes mean(-log_softmax(logits)[target]) over the batch
// using the log-sum-exp trick. Output is a scalar with shape {1}.
func (c *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: want 2D logits [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	td := targets.AsInt32()
	if len(td) != batch {
		panic(fmt.Sprintf("cross entropy: %d targets for batch of %d", len(td), batch))
	}

	ld := logits.AsFloat32()
	var total float32
	for b := 0; b < batch; b++ {
		row := ld[b*classes : (b+1)*classes]
		target := int(td[b])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cross entropy: target %d out of range [0, %d)", target, classes))
		}
		total += logSumExp(row) - row[target]
	}

	out := c.alloc(tensor.Shape{1}, tensor.Float32)
	out.AsFloat32()[0] = total / float32(batch)
	return out
}

// softmaxRow writes softmax(row) into dst.
func softmaxRow(row, dst []float32) {
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

// logSumExp computes log(sum(exp(z))) with max-shifting.
func logSumExp(z []float32) float32 {
	maxVal := z[0]
	for _, v := range z[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float32
	for _, v := range z {
		sum += math32.Exp(v - maxVal)
	}
	return maxVal + math32.Log(sum)
}
