// Package cpu implements the pure-Go CPU compute backend.
//
// Arithmetic kernels operate on float32 tensors; integer tensors are carried
// for labels and indices only. Shape or dtype violations panic: they indicate
// a bug in calling code, not a runtime condition.
package cpu

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Backend implements tensor.Backend on the host CPU.
type Backend struct {
	device tensor.Device
}

// New creates a CPU backend.
func New() *Backend {
	return &Backend{device: tensor.CPU}
}

// Name returns the backend name.
func (c *Backend) Name() string { return "CPU" }

// Device returns the compute device.
func (c *Backend) Device() tensor.Device { return c.device }

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("div", a, b, func(x, y float32) float32 { return x / y })
}

// binary applies fn element-wise over broadcast inputs.
func (c *Backend) binary(name string, a, b *tensor.RawTensor, fn func(x, y float32) float32) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	out := c.alloc(outShape, tensor.Float32)
	ad := a.AsFloat32()
	bd := b.AsFloat32()
	od := out.AsFloat32()

	if !needsBroadcast {
		for i := range od {
			od[i] = fn(ad[i], bd[i])
		}
		return out
	}

	as := broadcastStrides(a.Shape(), outShape)
	bs := broadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()
	for i := range od {
		ai, bi := 0, 0
		rem := i
		for d := 0; d < len(outShape); d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			ai += coord * as[d]
			bi += coord * bs[d]
		}
		od[i] = fn(ad[ai], bd[bi])
	}
	return out
}

// AddScalar adds s to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return c.unary(x, func(v float32) float32 { return v + s })
}

// MulScalar multiplies every element by s.
func (c *Backend) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return c.unary(x, func(v float32) float32 { return v * s })
}

// unary applies fn to every element of a float32 tensor.
func (c *Backend) unary(x *tensor.RawTensor, fn func(v float32) float32) *tensor.RawTensor {
	out := c.alloc(x.Shape(), tensor.Float32)
	xd := x.AsFloat32()
	od := out.AsFloat32()
	for i, v := range xd {
		od[i] = fn(v)
	}
	return out
}

// Reshape returns a view with the same data under a new shape.
func (c *Backend) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := t.View(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose permutes dimensions, copying data into a new contiguous tensor.
// Without axes all dimensions reverse.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}
	out := c.alloc(outShape, t.DType())
	if t.DType() != tensor.Float32 {
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	xd := t.AsFloat32()
	od := out.AsFloat32()
	for i := range od {
		rem := i
		srcIdx := 0
		for d := 0; d < ndim; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			srcIdx += coord * inStrides[axes[d]]
		}
		od[i] = xd[srcIdx]
	}
	return out
}

// alloc creates a result tensor or panics; allocation only fails on a shape
// bug upstream.
func (c *Backend) alloc(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, dtype, c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: alloc: %v", err))
	}
	return out
}

// broadcastStrides returns per-output-axis strides into a tensor of shape
// `in` broadcast to `out`: broadcast axes get stride 0.
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	for d := range out {
		if d < offset {
			continue // missing leading axis, stride 0
		}
		if in[d-offset] == 1 && out[d] != 1 {
			continue // broadcast axis, stride 0
		}
		strides[d] = inStrides[d-offset]
	}
	return strides
}
