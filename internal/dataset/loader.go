package dataset

import (
	"fmt"
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Batch is one mini-batch of samples as backend tensors: images
// [size, ImageSize] float32 and labels [size] int32.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B]
	Labels *tensor.Tensor[int32, B]
	Size   int
}

// Loader serves a dataset in mini-batches. With shuffling enabled the
// sample order is re-drawn on every Batches call (one call per epoch), so
// no two epochs see the same order while a fixed seed keeps the whole run
// reproducible.
type Loader[B tensor.Backend] struct {
	dataset   *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	backend   B
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool
	Seed      int64 // used only when Shuffle is set
}

// NewLoader creates a Loader over the dataset.
func NewLoader[B tensor.Backend](ds *Dataset, config LoaderConfig, backend B) (*Loader[B], error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	l := &Loader[B]{
		dataset:   ds,
		batchSize: config.BatchSize,
		shuffle:   config.Shuffle,
		backend:   backend,
	}
	if config.Shuffle {
		l.rng = rand.New(rand.NewSource(config.Seed)) //nolint:gosec // reproducible shuffling
	}
	return l, nil
}

// NumBatches returns the number of batches per epoch, counting the final
// short batch.
func (l *Loader[B]) NumBatches() int {
	return (l.dataset.Len() + l.batchSize - 1) / l.batchSize
}

// Batches materializes one epoch of mini-batches. The last batch is
// smaller when the dataset size is not a multiple of the batch size.
func (l *Loader[B]) Batches() ([]*Batch[B], error) {
	n := l.dataset.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	batches := make([]*Batch[B], 0, l.NumBatches())
	for start := 0; start < n; start += l.batchSize {
		end := start + l.batchSize
		if end > n {
			end = n
		}
		batch, err := l.makeBatch(indices[start:end])
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func (l *Loader[B]) makeBatch(indices []int) (*Batch[B], error) {
	size := len(indices)

	imagesRaw, err := tensor.NewRaw(tensor.Shape{size, ImageSize}, tensor.Float32, l.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("allocate batch images: %w", err)
	}
	labelsRaw, err := tensor.NewRaw(tensor.Shape{size}, tensor.Int32, l.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("allocate batch labels: %w", err)
	}

	images := imagesRaw.AsFloat32()
	labels := labelsRaw.AsInt32()
	for row, idx := range indices {
		copy(images[row*ImageSize:(row+1)*ImageSize], l.dataset.Image(idx))
		labels[row] = l.dataset.Label(idx)
	}

	return &Batch[B]{
		Images: tensor.New[float32, B](imagesRaw, l.backend),
		Labels: tensor.New[int32, B](labelsRaw, l.backend),
		Size:   size,
	}, nil
}
