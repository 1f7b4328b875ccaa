package optim

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum:
//
//	param -= lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param -= lr * velocity
//
// Momentum smooths the descent direction across batches, damping the
// zig-zag that plain SGD shows in narrow loss valleys.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]]*tensor.RawTensor
	backend    B
}

// SGDConfig configures SGD. Zero values take defaults: LR 0.01, no momentum.
type SGDConfig struct {
	LR       float32
	Momentum float32 // in [0, 1)
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]]*tensor.RawTensor),
		backend:    backend,
	}
}

// Step applies one descent update to every parameter with a gradient.
// Updates run element-wise, in place, on the parameter's own buffer.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.AsFloat32()

		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
			continue
		}

		velocity := s.velocityFor(param)
		vData := velocity.AsFloat32()
		for i := range paramData {
			vData[i] = s.momentum*vData[i] + gradData[i]
			paramData[i] -= s.lr * vData[i]
		}
	}
}

func (s *SGD[B]) velocityFor(param *nn.Parameter[B]) *tensor.RawTensor {
	if v, ok := s.velocities[param]; ok {
		return v
	}
	v, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, s.backend.Device())
	if err != nil {
		panic(err)
	}
	s.velocities[param] = v
	return v
}

// ZeroGrad clears every parameter's stored gradient.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD[B]) LR() float32 { return s.lr }

// SetLR changes the learning rate.
func (s *SGD[B]) SetLR(lr float32) { s.lr = lr }

// StateDict exports momentum velocities keyed "velocity.{index}".
// Without momentum there is no state and the map is empty.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}
	for i, param := range s.params {
		if v, ok := s.velocities[param]; ok {
			stateDict[fmt.Sprintf("velocity.%d", i)] = v
		}
	}
	return stateDict
}

// LoadStateDict restores momentum velocities. Missing entries stay zero;
// a shape mismatch is an error.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}
	s.velocities = make(map[*nn.Parameter[B]]*tensor.RawTensor)
	for i, param := range s.params {
		raw, ok := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !raw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: want %v, got %v",
				i, param.Tensor().Shape(), raw.Shape())
		}
		s.velocities[param] = raw
	}
	return nil
}
