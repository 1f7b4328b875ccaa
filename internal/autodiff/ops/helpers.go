package ops

import "github.com/gradlet-ml/gradlet/internal/tensor"

// reduceBroadcast sums a gradient back down to the shape of a forward-pass
// input that was broadcast. Broadcasting in the forward direction duplicates
// values; the chain rule therefore sums the corresponding gradient entries.
//
//	forward:  a[3,1] + b[3,4] -> c[3,4]
//	backward: grad_c[3,4] -> grad_a[3,1]  (sum along axis 1)
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	// Sum away extra leading axes first.
	result := grad
	for len(result.Shape()) > len(target) {
		result = backend.SumDim(result, 0, false)
	}

	// Then collapse axes where the input had size 1.
	for d := 0; d < len(target); d++ {
		if target[d] == 1 && result.Shape()[d] > 1 {
			result = backend.SumDim(result, d, true)
		}
	}

	if !result.Shape().Equal(target) {
		result = backend.Reshape(result, target)
	}
	return result
}

// negate returns -grad.
func negate(grad *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return backend.MulScalar(grad, -1)
}
