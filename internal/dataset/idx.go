// Package dataset loads MNIST from the official IDX files and serves it in
// shuffled mini-batches ready for training.
package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers: 0x0000 prefix, dtype byte 0x08 (uint8), then the
// dimension count (3 for images, 1 for labels).
const (
	idxImageMagic = 2051
	idxLabelMagic = 2049
)

// ReadIDXImages reads an IDX image file, returning the flattened pixel data
// and its dimensions. Files ending in .gz are decompressed on the fly.
func ReadIDXImages(path string) (pixels []byte, count, rows, cols int, err error) {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	defer closer()

	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, 0, 0, 0, fmt.Errorf("read IDX header of %s: %w", path, err)
		}
	}
	if header[0] != idxImageMagic {
		return nil, 0, 0, 0, fmt.Errorf("%s: bad magic %d, want %d (IDX image file)", path, header[0], idxImageMagic)
	}
	count, rows, cols = int(header[1]), int(header[2]), int(header[3])

	pixels = make([]byte, count*rows*cols)
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("read %d images from %s: %w", count, path, err)
	}
	return pixels, count, rows, cols, nil
}

// ReadIDXLabels reads an IDX label file. Files ending in .gz are
// decompressed on the fly.
func ReadIDXLabels(path string) ([]byte, error) {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	var magic, count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read IDX header of %s: %w", path, err)
	}
	if magic != idxLabelMagic {
		return nil, fmt.Errorf("%s: bad magic %d, want %d (IDX label file)", path, magic, idxLabelMagic)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read IDX header of %s: %w", path, err)
	}

	labels := make([]byte, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read %d labels from %s: %w", count, path, err)
	}
	return labels, nil
}

func openMaybeGzip(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open gzip %s: %w", path, err)
	}
	return gz, func() { gz.Close(); f.Close() }, nil
}
