package autodiff

import (
	"github.com/gradlet-ml/gradlet/internal/autodiff/ops"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Tape records operations during the forward pass and replays them in reverse
// to compute gradients (reverse-mode automatic differentiation).
type Tape struct {
	operations []ops.Operation
	recording  bool
}

// NewTape creates an empty, non-recording tape.
func NewTape() *Tape {
	return &Tape{operations: make([]ops.Operation, 0, 64)}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() { t.recording = true }

// StopRecording disables operation recording.
func (t *Tape) StopRecording() { t.recording = false }

// IsRecording reports whether the tape is recording.
func (t *Tape) IsRecording() bool { return t.recording }

// Record appends an operation if the tape is recording.
func (t *Tape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear drops all recorded operations; the recording flag is preserved.
// Call between training steps so the tape does not grow without bound.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int { return len(t.operations) }

// Backward walks the tape in reverse, seeding the final operation's output
// with outputGrad and accumulating per-tensor gradients by the chain rule.
//
// A tensor consumed by several operations receives the sum of their
// contributions. Operations whose output never received a gradient are
// skipped: no loss depends on them.
func (t *Tape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}

	// Gradient math must not be recorded onto the tape being replayed.
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	last := t.operations[len(t.operations)-1]
	grads[last.Output()] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		upstream, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(upstream, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
