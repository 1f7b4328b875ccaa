package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// MNIST geometry.
const (
	ImageRows  = 28
	ImageCols  = 28
	ImageSize  = ImageRows * ImageCols
	NumClasses = 10
)

// Split names the two halves of MNIST.
type Split string

// The dataset ships a 60k training split and a 10k test split.
const (
	Train Split = "train"
	Test  Split = "test"
)

func (s Split) files() (images, labels string, err error) {
	switch s {
	case Train:
		return "train-images-idx3-ubyte", "train-labels-idx1-ubyte", nil
	case Test:
		return "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte", nil
	default:
		return "", "", fmt.Errorf("unknown split %q", s)
	}
}

// Dataset holds a set of labeled digit images in flat storage:
// pixel i of sample n lives at Images[n*ImageSize+i], normalized to [0, 1].
type Dataset struct {
	Images []float32
	Labels []int32
}

// Load reads one MNIST split from dir. Both plain and .gz copies of the
// IDX files are accepted, with the plain file winning when both exist.
func Load(dir string, split Split) (*Dataset, error) {
	imageFile, labelFile, err := split.files()
	if err != nil {
		return nil, err
	}

	pixels, count, rows, cols, err := ReadIDXImages(findFile(dir, imageFile))
	if err != nil {
		return nil, fmt.Errorf("load %s images: %w", split, err)
	}
	if rows != ImageRows || cols != ImageCols {
		return nil, fmt.Errorf("load %s images: got %dx%d images, want %dx%d", split, rows, cols, ImageRows, ImageCols)
	}

	rawLabels, err := ReadIDXLabels(findFile(dir, labelFile))
	if err != nil {
		return nil, fmt.Errorf("load %s labels: %w", split, err)
	}
	if len(rawLabels) != count {
		return nil, fmt.Errorf("load %s: %d images but %d labels", split, count, len(rawLabels))
	}

	ds := &Dataset{
		Images: make([]float32, len(pixels)),
		Labels: make([]int32, count),
	}
	for i, p := range pixels {
		ds.Images[i] = float32(p) / 255.0
	}
	for i, l := range rawLabels {
		if l >= NumClasses {
			return nil, fmt.Errorf("load %s: label %d out of range at sample %d", split, l, i)
		}
		ds.Labels[i] = int32(l)
	}
	return ds, nil
}

func findFile(dir, name string) string {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain
	}
	return plain + ".gz"
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Labels) }

// Image returns sample i's pixels as a view into the dataset's storage.
func (d *Dataset) Image(i int) []float32 {
	return d.Images[i*ImageSize : (i+1)*ImageSize]
}

// Label returns sample i's class.
func (d *Dataset) Label(i int) int32 { return d.Labels[i] }

// Split cuts the dataset in two at the given ratio: the first part keeps
// ratio of the samples, the second gets the rest. Both share the original
// storage. Typical use is carving a validation set off the training split.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset) {
	if ratio < 0 || ratio > 1 {
		panic(fmt.Sprintf("Split: ratio %g outside [0, 1]", ratio))
	}
	cut := int(float64(d.Len()) * ratio)
	first := &Dataset{
		Images: d.Images[:cut*ImageSize],
		Labels: d.Labels[:cut],
	}
	second := &Dataset{
		Images: d.Images[cut*ImageSize:],
		Labels: d.Labels[cut:],
	}
	return first, second
}

// Synthetic builds a small fake dataset cycling through the ten classes,
// each class a distinct horizontal band of bright pixels. Useful for tests
// and for exercising the training loop without downloading anything.
func Synthetic(numSamples int) *Dataset {
	ds := &Dataset{
		Images: make([]float32, numSamples*ImageSize),
		Labels: make([]int32, numSamples),
	}
	for n := 0; n < numSamples; n++ {
		class := n % NumClasses
		ds.Labels[n] = int32(class)

		img := ds.Images[n*ImageSize : (n+1)*ImageSize]
		startRow := class * 2
		for row := startRow; row < startRow+6 && row < ImageRows; row++ {
			for col := 4; col < ImageCols-4; col++ {
				img[row*ImageCols+col] = 0.9
			}
		}
	}
	return ds
}
