package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 1, Shape{1}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements(), "scalar shape has one element")
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{2, 3}.Validate())
	require.Error(t, Shape{2, 0}.Validate())
	require.Error(t, Shape{-1}.Validate())
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{5}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Shape
		want   Shape
		needed bool
	}{
		{"same shape", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false},
		{"bias row", Shape{4, 10}, Shape{1, 10}, Shape{4, 10}, true},
		{"missing leading axis", Shape{4, 10}, Shape{10}, Shape{4, 10}, true},
		{"scalar-ish", Shape{3, 3}, Shape{1, 1}, Shape{3, 3}, true},
		{"both broadcast", Shape{3, 1}, Shape{1, 4}, Shape{3, 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needed, err := BroadcastShapes(tt.a, tt.b)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			assert.Equal(t, tt.needed, needed)
		})
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	_, _, err := BroadcastShapes(Shape{2, 3}, Shape{2, 4})
	require.Error(t, err)
}
