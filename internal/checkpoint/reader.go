package checkpoint

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Reader reads a .gradlet file. The header is parsed eagerly on open so
// callers can inspect metadata without touching the tensor data.
type Reader struct {
	file   *os.File
	buf    *bufio.Reader
	header Header
}

// NewReader opens a .gradlet file and parses its header.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint file: %w", err)
	}
	r := &Reader{file: f, buf: bufio.NewReader(f)}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.file.Close() }

// Header returns the parsed file header.
func (r *Reader) Header() Header { return r.header }

func (r *Reader) readHeader() error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r.buf, magic); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != Magic {
		return fmt.Errorf("bad magic %q, not a .gradlet file", magic)
	}

	var version uint32
	if err := binary.Read(r.buf, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("unsupported format version %d (want %d)", version, FormatVersion)
	}

	var headerLen uint32
	if err := binary.Read(r.buf, binary.LittleEndian, &headerLen); err != nil {
		return fmt.Errorf("read header length: %w", err)
	}
	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(r.buf, headerJSON); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	return nil
}

// ReadStateDict reads every tensor in the file into fresh RawTensors on
// the given device. Tensors appear in the data section in index order, so
// a single sequential pass suffices.
func (r *Reader) ReadStateDict(device tensor.Device) (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	var pos int64

	for _, meta := range r.header.Tensors {
		if meta.Offset != pos {
			return nil, fmt.Errorf("tensor %q: offset %d out of order (at %d)", meta.Name, meta.Offset, pos)
		}
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, fmt.Errorf("tensor %q: unknown dtype %q", meta.Name, meta.DType)
		}
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, device)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		if int64(raw.ByteSize()) != meta.Size {
			return nil, fmt.Errorf("tensor %q: size %d does not match shape %v", meta.Name, meta.Size, meta.Shape)
		}
		if _, err := io.ReadFull(r.buf, raw.Data()); err != nil {
			return nil, fmt.Errorf("tensor %q: read data: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
		pos += meta.Size
	}
	return stateDict, nil
}
