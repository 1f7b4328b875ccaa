package nn

import (
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Module is the interface every network component implements.
//
// Modules compose into architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, rng, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module's output for the given input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the trainable parameters, including those of
	// nested modules. Parameter-free modules return nil.
	Parameters() []*Parameter[B]

	// StateDict exports parameter tensors by name for serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameter values in from a state dictionary.
	// Missing names or shape mismatches are errors.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
