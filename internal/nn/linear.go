package nn

import (
	"fmt"
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Linear is a fully connected layer computing y = x @ W.T + b with
// weight W of shape [outFeatures, inFeatures] and bias b of shape
// [outFeatures]. Weights use Xavier initialization, biases start at zero.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [outFeatures, inFeatures]
	bias        *Parameter[B] // [outFeatures]
	backend     B
}

// NewLinear creates a Linear layer. The rng seeds weight initialization;
// nil uses the global source.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng, backend))
	bias := NewParameter("bias", Zeros[B](tensor.Shape{outFeatures}, backend))

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape [batch, inFeatures], output shape [batch, outFeatures].
// The transpose and the bias reshape go through the backend so that, under
// the autodiff decorator, gradients find their way back to the parameters.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: want 2D input [batch, features], got %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: want %d input features, got %d", l.inFeatures, shape[1]))
	}

	output := input.MatMul(l.weight.Tensor().T())
	output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	return output
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] { return l.bias }

// InFeatures returns the input width.
func (l *Linear[B]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output width.
func (l *Linear[B]) OutFeatures() int { return l.outFeatures }

// StateDict exports the layer's parameters.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
		"bias":   l.bias.Tensor().Raw(),
	}
}

// LoadStateDict copies weight and bias values from a state dictionary.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadParam(l.weight, stateDict, tensor.Shape{l.outFeatures, l.inFeatures}); err != nil {
		return err
	}
	return loadParam(l.bias, stateDict, tensor.Shape{l.outFeatures})
}

// loadParam validates shape and dtype, then copies values into the
// parameter's existing buffer so its RawTensor identity is preserved.
func loadParam[B tensor.Backend](p *Parameter[B], stateDict map[string]*tensor.RawTensor, want tensor.Shape) error {
	raw, ok := stateDict[p.Name()]
	if !ok {
		return fmt.Errorf("missing %s in state dict", p.Name())
	}
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: want %v, got %v", p.Name(), want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: want float32, got %v", p.Name(), raw.DType())
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}
