package dataset_test

import (
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/dataset"
)

// writeIDXImages writes a minimal IDX image file with sequential pixel values.
func writeIDXImages(t *testing.T, path string, count int, compress bool) {
	t.Helper()
	buf := make([]byte, 0, 16+count*dataset.ImageSize)
	buf = binary.BigEndian.AppendUint32(buf, 2051)
	buf = binary.BigEndian.AppendUint32(buf, uint32(count))
	buf = binary.BigEndian.AppendUint32(buf, dataset.ImageRows)
	buf = binary.BigEndian.AppendUint32(buf, dataset.ImageCols)
	for i := 0; i < count*dataset.ImageSize; i++ {
		buf = append(buf, byte(i%256))
	}
	writeMaybeGzip(t, path, buf, compress)
}

func writeIDXLabels(t *testing.T, path string, labels []byte, compress bool) {
	t.Helper()
	buf := make([]byte, 0, 8+len(labels))
	buf = binary.BigEndian.AppendUint32(buf, 2049)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(labels)))
	buf = append(buf, labels...)
	writeMaybeGzip(t, path, buf, compress)
}

func writeMaybeGzip(t *testing.T, path string, data []byte, compress bool) {
	t.Helper()
	if !compress {
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestReadIDXImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train-images-idx3-ubyte")
	writeIDXImages(t, path, 3, false)

	pixels, count, rows, cols, err := dataset.ReadIDXImages(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, dataset.ImageRows, rows)
	assert.Equal(t, dataset.ImageCols, cols)
	assert.Len(t, pixels, 3*dataset.ImageSize)
	assert.Equal(t, byte(0), pixels[0])
	assert.Equal(t, byte(1), pixels[1])
}

func TestReadIDXImagesGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train-images-idx3-ubyte.gz")
	writeIDXImages(t, path, 2, true)

	pixels, count, _, _, err := dataset.ReadIDXImages(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, pixels, 2*dataset.ImageSize)
}

func TestReadIDXImagesBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 8, 9, 0, 0, 0, 0}, 0o644))

	_, _, _, _, err := dataset.ReadIDXImages(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestReadIDXLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train-labels-idx1-ubyte")
	writeIDXLabels(t, path, []byte{5, 0, 4}, false)

	labels, err := dataset.ReadIDXLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 4}, labels)
}

func TestLoadSplit(t *testing.T) {
	dir := t.TempDir()
	writeIDXImages(t, filepath.Join(dir, "train-images-idx3-ubyte"), 4, false)
	writeIDXLabels(t, filepath.Join(dir, "train-labels-idx1-ubyte"), []byte{0, 1, 2, 3}, false)

	ds, err := dataset.Load(dir, dataset.Train)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, int32(2), ds.Label(2))

	// Pixels are normalized from [0, 255] to [0, 1].
	for _, v := range ds.Image(0) {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	assert.InDelta(t, 1.0/255.0, ds.Image(0)[1], 1e-6)
}

func TestLoadPrefersGzipWhenPlainMissing(t *testing.T) {
	dir := t.TempDir()
	writeIDXImages(t, filepath.Join(dir, "t10k-images-idx3-ubyte.gz"), 2, true)
	writeIDXLabels(t, filepath.Join(dir, "t10k-labels-idx1-ubyte.gz"), []byte{7, 8}, true)

	ds, err := dataset.Load(dir, dataset.Test)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, int32(7), ds.Label(0))
}

func TestLoadRejectsCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeIDXImages(t, filepath.Join(dir, "train-images-idx3-ubyte"), 3, false)
	writeIDXLabels(t, filepath.Join(dir, "train-labels-idx1-ubyte"), []byte{1, 2}, false)

	_, err := dataset.Load(dir, dataset.Train)
	require.Error(t, err)
}

func TestDatasetSplit(t *testing.T) {
	ds := dataset.Synthetic(100)
	train, val := ds.Split(0.9)
	assert.Equal(t, 90, train.Len())
	assert.Equal(t, 10, val.Len())

	// The split shares the original storage rather than copying it.
	assert.Equal(t, ds.Label(90), val.Label(0))
}

func TestSynthetic(t *testing.T) {
	ds := dataset.Synthetic(25)
	assert.Equal(t, 25, ds.Len())
	for i := 0; i < 25; i++ {
		assert.Equal(t, int32(i%dataset.NumClasses), ds.Label(i))
	}

	// Different classes light up different rows.
	assert.NotEqual(t, ds.Image(0), ds.Image(5))
}

func TestLoaderCoversEverySample(t *testing.T) {
	be := cpu.New()
	ds := dataset.Synthetic(10)
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 4, Shuffle: true, Seed: 42}, be)
	require.NoError(t, err)

	assert.Equal(t, 3, loader.NumBatches())
	batches, err := loader.Batches()
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 2, batches[2].Size, "the final short batch is kept")

	seen := make(map[int32]int)
	for _, b := range batches {
		for _, label := range b.Labels.Data() {
			seen[label]++
		}
	}
	assert.Len(t, seen, dataset.NumClasses, "every class appears exactly once in Synthetic(10)")
}

func TestLoaderShuffleDeterministicPerSeed(t *testing.T) {
	be := cpu.New()
	ds := dataset.Synthetic(20)

	labelsFor := func(seed int64) []int32 {
		loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 20, Shuffle: true, Seed: seed}, be)
		require.NoError(t, err)
		batches, err := loader.Batches()
		require.NoError(t, err)
		return batches[0].Labels.Data()
	}

	assert.Equal(t, labelsFor(1), labelsFor(1))
	assert.NotEqual(t, labelsFor(1), labelsFor(2))
}

func TestLoaderReshufflesEachEpoch(t *testing.T) {
	be := cpu.New()
	ds := dataset.Synthetic(50)
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 50, Shuffle: true, Seed: 7}, be)
	require.NoError(t, err)

	first, err := loader.Batches()
	require.NoError(t, err)
	second, err := loader.Batches()
	require.NoError(t, err)
	assert.NotEqual(t, first[0].Labels.Data(), second[0].Labels.Data(),
		"successive epochs draw different orders")
}

func TestLoaderBatchShapes(t *testing.T) {
	be := cpu.New()
	ds := dataset.Synthetic(8)
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 8}, be)
	require.NoError(t, err)

	batches, err := loader.Batches()
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []int{8, dataset.ImageSize}, []int(batches[0].Images.Shape()))
	assert.Equal(t, []int{8}, []int(batches[0].Labels.Shape()))
}

func TestLoaderRejectsBadConfig(t *testing.T) {
	be := cpu.New()
	_, err := dataset.NewLoader(dataset.Synthetic(4), dataset.LoaderConfig{BatchSize: 0}, be)
	require.Error(t, err)

	_, err = dataset.NewLoader(&dataset.Dataset{}, dataset.LoaderConfig{BatchSize: 4}, be)
	require.Error(t, err)
}
