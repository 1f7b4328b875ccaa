package autodiff

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Gradients maps each forward-pass tensor to its gradient. Keys are tensor
// identities (pointers), which is why parameters must keep a stable
// RawTensor across the forward and backward passes.
type Gradients = map[*tensor.RawTensor]*tensor.RawTensor

// BackwardCapable is satisfied by backends that carry a gradient tape,
// i.e. the autodiff decorator.
type BackwardCapable interface {
	tensor.Backend
	Tape() *Tape
}

// Backward computes gradients of t with respect to every tensor recorded
// on the backend's tape, seeding with ∂t/∂t = 1.
//
// The output is normally a scalar loss. For a non-scalar output the seed
// of ones yields the gradient of the sum of its elements.
//
//	be := autodiff.New(cpu.New())
//	be.Tape().StartRecording()
//	y := x.Mul(x)
//	grads := autodiff.Backward(y, be)
//	dx := grads[x.Raw()]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) Gradients {
	tape := backend.Tape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget Tape().StartRecording()?)")
	}
	if t.DType() != tensor.Float32 {
		panic(fmt.Sprintf("backward: output must be float32, got %s", t.DType()))
	}

	seed, err := tensor.NewRaw(t.Shape(), tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: allocate seed gradient: %v", err))
	}
	ones := seed.AsFloat32()
	for i := range ones {
		ones[i] = 1
	}

	// The tape suspends recording while it replays, so routing gradient
	// math through the decorator is safe.
	return tape.Backward(seed, backend)
}
