package tensor

// Backend is the interface every compute implementation must satisfy.
//
// The CPU backend implements it directly; the autodiff backend decorates any
// Backend and records operations on a tape so gradients can be computed later.
//
// Element-wise binary operations follow NumPy broadcasting rules. Operations
// panic on shape or dtype violations: these are programmer errors, not
// recoverable runtime conditions.
type Backend interface {
	// Element-wise binary operations (broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix multiplication for 2D tensors: (M,K) @ (K,N) -> (M,N).
	MatMul(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, s float32) *RawTensor
	MulScalar(x *RawTensor, s float32) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Softmax along the last dimension of a 2D tensor.
	Softmax(x *RawTensor) *RawTensor

	// CrossEntropy computes mean negative log-likelihood for logits
	// [batch, classes] against int32 class indices [batch]. Scalar output.
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor                           // scalar, Shape{1}
	Mean(x *RawTensor) *RawTensor                          // scalar, Shape{1}
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dim
	Argmax(x *RawTensor, dim int) *RawTensor               // int32 indices

	// Shape operations.
	Reshape(t *RawTensor, shape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
