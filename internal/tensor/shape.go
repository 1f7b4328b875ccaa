package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements described by the shape.
// A zero-length shape describes a scalar with one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that all dimensions are positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension %d at axis %d (must be > 0)", dim, i)
		}
	}
	return nil
}

// Equal reports whether two shapes are identical.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape like (2, 3).
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are compared element-wise from the right; dimensions are compatible
// when equal or when one of them is 1. Missing leading dimensions count as 1.
// Returns the broadcast shape, whether any broadcasting is required, and an
// error for incompatible shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Shape, n)
	needed := false

	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			ad = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			bd = b[idx]
		}
		switch {
		case ad == bd:
			out[n-1-i] = ad
		case ad == 1:
			out[n-1-i] = bd
			needed = true
		case bd == 1:
			out[n-1-i] = ad
			needed = true
		default:
			return nil, false, fmt.Errorf("shapes %v and %v are not broadcast-compatible at axis %d", a, b, n-1-i)
		}
	}
	if len(a) != len(b) {
		needed = true
	}
	return out, needed, nil
}
