// Package tensor provides the core tensor types for the gradlet framework.
package tensor

// DType is a constraint for supported tensor element types.
type DType interface {
	~float32 | ~int32 | ~uint8
}

// DataType carries runtime type information for tensors.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Int32
	Uint8
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// inferDataType maps a generic element type T to its runtime tag.
func inferDataType[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case uint8:
		return Uint8
	default:
		panic("unsupported element type")
	}
}
