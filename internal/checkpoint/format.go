// Package checkpoint implements the .gradlet file format: a small container
// for model parameters, optimizer state and training metadata.
//
// Layout:
//
//	[0:4)   magic "GRDL"
//	[4:8)   format version, uint32 little-endian
//	[8:12)  header length in bytes, uint32 little-endian
//	[12:..) JSON header (Header)
//	[..:..) tensor data section, tensors back to back in header order
//
// The JSON header carries the tensor index (name, dtype, shape, offset,
// size) plus free-form metadata, so a file is inspectable with nothing but
// a hex dump and a JSON pretty-printer.
package checkpoint

import (
	"time"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Format constants.
const (
	Magic         = "GRDL"
	FormatVersion = 1
)

// Dtype strings used in the JSON header.
const (
	dtypeFloat32 = "float32"
	dtypeInt32   = "int32"
	dtypeUint8   = "uint8"
)

// Header is the JSON header of a .gradlet file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Training      *TrainingMeta     `json:"training,omitempty"`
}

// TrainingMeta records where in a run the checkpoint was taken. It is set
// for resumable training checkpoints and nil for plain model exports.
type TrainingMeta struct {
	RunID string  `json:"run_id"`
	Epoch int     `json:"epoch"`
	Step  int64   `json:"step"`
	Loss  float64 `json:"loss"`
}

// TensorMeta locates one tensor inside the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return dtypeFloat32
	case tensor.Int32:
		return dtypeInt32
	case tensor.Uint8:
		return dtypeUint8
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case dtypeFloat32:
		return tensor.Float32, true
	case dtypeInt32:
		return tensor.Int32, true
	case dtypeUint8:
		return tensor.Uint8, true
	default:
		return 0, false
	}
}
