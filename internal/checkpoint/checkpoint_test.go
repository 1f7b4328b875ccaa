package checkpoint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/checkpoint"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

func newFloat32(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gradlet")

	weight := newFloat32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	bias := newFloat32(t, tensor.Shape{3}, []float32{0.1, 0.2, 0.3})

	w, err := checkpoint.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(map[string]*tensor.RawTensor{
		"0.weight": weight,
		"0.bias":   bias,
	}, "Sequential", map[string]string{"dataset": "mnist"}))
	require.NoError(t, w.Close())

	r, err := checkpoint.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	header := r.Header()
	assert.Equal(t, checkpoint.FormatVersion, header.FormatVersion)
	assert.Equal(t, "Sequential", header.ModelType)
	assert.Equal(t, "mnist", header.Metadata["dataset"])
	assert.Len(t, header.Tensors, 2)
	assert.False(t, header.CreatedAt.IsZero())

	stateDict, err := r.ReadStateDict(tensor.CPU)
	require.NoError(t, err)
	require.Len(t, stateDict, 2)
	assert.Equal(t, weight.AsFloat32(), stateDict["0.weight"].AsFloat32())
	assert.Equal(t, bias.AsFloat32(), stateDict["0.bias"].AsFloat32())
	assert.True(t, stateDict["0.weight"].Shape().Equal(tensor.Shape{2, 3}))
}

func TestTensorsSortedByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorted.gradlet")

	w, err := checkpoint.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(map[string]*tensor.RawTensor{
		"b": newFloat32(t, tensor.Shape{1}, []float32{2}),
		"a": newFloat32(t, tensor.Shape{1}, []float32{1}),
		"c": newFloat32(t, tensor.Shape{1}, []float32{3}),
	}, "test", nil))
	require.NoError(t, w.Close())

	r, err := checkpoint.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, meta := range r.Header().Tensors {
		names = append(names, meta.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names, "sorted order makes files reproducible")
}

func TestMixedDtypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.gradlet")

	labels, err := tensor.NewRaw(tensor.Shape{4}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(labels.AsInt32(), []int32{3, 1, 4, 1})

	w, err := checkpoint.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(map[string]*tensor.RawTensor{
		"weights": newFloat32(t, tensor.Shape{2}, []float32{1.5, -2.5}),
		"t":       labels,
	}, "test", nil))
	require.NoError(t, w.Close())

	r, err := checkpoint.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	stateDict, err := r.ReadStateDict(tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 4, 1}, stateDict["t"].AsInt32())
	assert.Equal(t, tensor.Int32, stateDict["t"].DType())
}

func TestRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.gradlet")
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x01\x00\x00\x00"), 0o644))

	_, err := checkpoint.NewReader(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestRejectsUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.gradlet")
	// Magic followed by version 99.
	require.NoError(t, os.WriteFile(path, []byte("GRDL\x63\x00\x00\x00\x00\x00\x00\x00"), 0o644))

	_, err := checkpoint.NewReader(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format version")
}

func TestRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.gradlet")

	w, err := checkpoint.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(map[string]*tensor.RawTensor{
		"w": newFloat32(t, tensor.Shape{8}, make([]float32, 8)),
	}, "test", nil))
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-8))

	r, err := checkpoint.NewReader(path)
	require.NoError(t, err, "header is intact, only data is cut short")
	defer r.Close()

	_, err = r.ReadStateDict(tensor.CPU)
	require.Error(t, err)
}
