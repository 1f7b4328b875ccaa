package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, inferDataType[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// Full creates a tensor filled with a constant value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a float32 tensor drawn from N(0, 1) via the Box-Muller
// transform, using the given source. A nil rng falls back to the global
// source.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[float32, B] {
	t := Zeros[float32, B](shape, b)
	data := t.Data()
	for i := 0; i < len(data); i += 2 {
		u1 := randFloat64(rng)
		u2 := randFloat64(rng)
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = float32(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = float32(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}

// Rand creates a float32 tensor with values uniform in [0, 1).
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[float32, B] {
	t := Zeros[float32, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(randFloat64(rng))
	}
	return t
}

// Arange creates a 1D int32 tensor with values [start, end).
func Arange[B Backend](start, end int32, b B) *Tensor[int32, B] {
	if end <= start {
		panic("Arange: end must be greater than start")
	}
	t := Zeros[int32, B](Shape{int(end - start)}, b)
	data := t.Data()
	for i := range data {
		data[i] = start + int32(i)
	}
	return t
}

func randFloat64(rng *rand.Rand) float64 {
	for {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			u = rand.Float64() //nolint:gosec // statistical, not cryptographic
		}
		if u > 0 {
			return u
		}
	}
}
