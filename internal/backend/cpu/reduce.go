package cpu

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Sum reduces all elements to a scalar with shape {1}.
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := c.alloc(tensor.Shape{1}, tensor.Float32)
	var total float32
	for _, v := range x.AsFloat32() {
		total += v
	}
	out.AsFloat32()[0] = total
	return out
}

// Mean reduces all elements to their scalar mean with shape {1}.
func (c *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := c.Sum(x)
	out.AsFloat32()[0] /= float32(x.NumElements())
	return out
}

// SumDim sums along one dimension. With keepDim the reduced axis stays as
// size 1, otherwise it is dropped.
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumdim: axis %d out of range for shape %v", dim, shape))
	}

	keptShape := shape.Clone()
	keptShape[dim] = 1
	out := c.alloc(keptShape, tensor.Float32)

	xd := x.AsFloat32()
	od := out.AsFloat32()
	strides := shape.ComputeStrides()
	outStrides := keptShape.ComputeStrides()
	for i, v := range xd {
		rem := i
		dst := 0
		for d := 0; d < len(shape); d++ {
			coord := rem / strides[d]
			rem %= strides[d]
			if d == dim {
				coord = 0
			}
			dst += coord * outStrides[d]
		}
		od[dst] += v
	}

	if keepDim {
		return out
	}
	dropped := make(tensor.Shape, 0, len(shape)-1)
	for d, size := range keptShape {
		if d == dim {
			continue
		}
		dropped = append(dropped, size)
	}
	if len(dropped) == 0 {
		dropped = tensor.Shape{1}
	}
	return c.Reshape(out, dropped)
}

// Argmax returns int32 indices of the maximum along dim. Only the last
// dimension of a 2D tensor is supported, which is what classification needs.
func (c *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 || dim != 1 {
		panic(fmt.Sprintf("argmax: only dim=1 of a 2D tensor is supported, got shape %v dim %d", shape, dim))
	}
	rows, cols := shape[0], shape[1]

	out := c.alloc(tensor.Shape{rows}, tensor.Int32)
	xd := x.AsFloat32()
	od := out.AsInt32()
	for r := 0; r < rows; r++ {
		row := xd[r*cols : (r+1)*cols]
		best := 0
		for i, v := range row[1:] {
			if v > row[best] {
				best = i + 1
			}
		}
		od[r] = int32(best)
	}
	return out
}
