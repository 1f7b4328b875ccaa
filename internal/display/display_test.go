package display_test

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/display"
)

func TestASCIIDimensions(t *testing.T) {
	img := dataset.Synthetic(1).Image(0)
	out := display.ASCII(img)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, dataset.ImageRows)
	for i, line := range lines {
		assert.Len(t, line, dataset.ImageCols, "row %d", i)
	}
}

func TestASCIIGlyphsTrackIntensity(t *testing.T) {
	pixels := make([]float32, dataset.ImageSize)
	out := display.ASCII(pixels)
	assert.NotContains(t, out, "@", "an all-black image has no bright glyphs")

	for i := range pixels {
		pixels[i] = 1.0
	}
	out = display.ASCII(pixels)
	assert.NotContains(t, out, " ", "an all-white image has no blank glyphs")
	assert.Contains(t, out, "@")
}

func TestASCIIRejectsWrongSize(t *testing.T) {
	assert.Panics(t, func() { display.ASCII(make([]float32, 10)) })
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digit.png")
	img := dataset.Synthetic(1).Image(0)
	require.NoError(t, display.SavePNG(img, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, dataset.ImageCols, bounds.Dx())
	assert.Equal(t, dataset.ImageRows, bounds.Dy())
}

func TestSavePNGRejectsWrongSize(t *testing.T) {
	err := display.SavePNG(make([]float32, 5), filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
}
