package nn

import (
	"math"
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Weight initializers. All take an explicit *rand.Rand so training runs are
// reproducible from a seed; nil falls back to the global source.

// Xavier initializes weights from the Glorot uniform distribution
// U(-b, b) with b = sqrt(6 / (fanIn + fanOut)), which keeps activation
// variance roughly constant across layers of sigmoid/tanh networks.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	raw, err := tensor.NewRaw(shape, tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32((uniform(rng)*2.0 - 1.0) * bound)
	}
	return tensor.New[float32, B](raw, backend)
}

// He initializes weights from N(0, sqrt(2/fanIn)), the standard choice for
// layers followed by ReLU.
func He[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	std := math.Sqrt(2.0 / float64(fanIn))

	raw, err := tensor.NewRaw(shape, tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(normal(rng) * std)
	}
	return tensor.New[float32, B](raw, backend)
}

// Zeros creates a zero-filled tensor, the usual bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a one-filled tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a tensor of standard normal samples.
func Randn[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[B](shape, rng, backend)
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		//nolint:gosec // weight initialization, not security-critical
		return rand.Float64()
	}
	return rng.Float64()
}

func normal(rng *rand.Rand) float64 {
	if rng == nil {
		//nolint:gosec // weight initialization, not security-critical
		return rand.NormFloat64()
	}
	return rng.NormFloat64()
}
