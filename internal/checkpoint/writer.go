package checkpoint

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Writer writes a .gradlet file.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
}

// NewWriter creates the file, truncating any existing one.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create checkpoint file: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// WriteStateDict writes the given tensors with a default header.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}
	return w.WriteStateDictWithHeader(stateDict, header)
}

// WriteStateDictWithHeader writes the given tensors under a caller-built
// header; the tensor index, version and timestamp fields are filled in here.
// Tensors are laid out in sorted name order so files are reproducible.
func (w *Writer) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	header.Tensors = make([]TensorMeta, 0, len(names))

	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  raw.Shape(),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	if _, err := w.buf.WriteString(Magic); err != nil {
		return err
	}
	if err := binary.Write(w.buf, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return err
	}
	if err := binary.Write(w.buf, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return err
	}
	if _, err := w.buf.Write(headerJSON); err != nil {
		return err
	}

	for _, name := range names {
		if _, err := w.buf.Write(stateDict[name].Data()); err != nil {
			return fmt.Errorf("write tensor %q: %w", name, err)
		}
	}
	return nil
}
