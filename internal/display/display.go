// Package display renders 28x28 digit images for terminals and files, so a
// reader can eyeball what the network is being fed.
package display

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/gradlet-ml/gradlet/internal/dataset"
)

// asciiRamp maps pixel intensity to glyphs, darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// ASCII renders a normalized [0,1] image as a block of text, one glyph per
// pixel. The input must hold dataset.ImageSize values in row-major order.
func ASCII(pixels []float32) string {
	if len(pixels) != dataset.ImageSize {
		panic(fmt.Sprintf("ASCII: want %d pixels, got %d", dataset.ImageSize, len(pixels)))
	}

	var sb strings.Builder
	sb.Grow(dataset.ImageRows * (dataset.ImageCols + 1))
	for row := 0; row < dataset.ImageRows; row++ {
		for col := 0; col < dataset.ImageCols; col++ {
			sb.WriteByte(glyph(pixels[row*dataset.ImageCols+col]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func glyph(v float32) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	idx := int(v * float32(len(asciiRamp)-1))
	return asciiRamp[idx]
}

// SavePNG writes a normalized [0,1] image as an 8-bit grayscale PNG.
func SavePNG(pixels []float32, path string) error {
	if len(pixels) != dataset.ImageSize {
		return fmt.Errorf("SavePNG: want %d pixels, got %d", dataset.ImageSize, len(pixels))
	}

	img := image.NewGray(image.Rect(0, 0, dataset.ImageCols, dataset.ImageRows))
	for row := 0; row < dataset.ImageRows; row++ {
		for col := 0; col < dataset.ImageCols; col++ {
			v := pixels[row*dataset.ImageCols+col]
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.SetGray(col, row, color.Gray{Y: uint8(v * 255)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
