package cpu

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M,K) @ (K,N) -> (M,N).
//
// The kernel iterates in i-k-j order so the inner loop walks both b and the
// output row contiguously, which matters for cache behavior on the 784-wide
// layers a digit classifier spends its time in.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: want 2D tensors, got %v @ %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", as, bs))
	}
	m, k, n := as[0], as[1], bs[1]

	out := c.alloc(tensor.Shape{m, n}, tensor.Float32)
	ad := a.AsFloat32()
	bd := b.AsFloat32()
	od := out.AsFloat32()

	for i := 0; i < m; i++ {
		arow := ad[i*k : (i+1)*k]
		orow := od[i*n : (i+1)*n]
		for kk := 0; kk < k; kk++ {
			av := arow[kk]
			if av == 0 {
				continue
			}
			brow := bd[kk*n : (kk+1)*n]
			for j, bv := range brow {
				orow[j] += av * bv
			}
		}
	}
	return out
}
