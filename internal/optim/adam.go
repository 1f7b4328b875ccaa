package optim

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Adam implements adaptive moment estimation (Kingma & Ba, 2014).
//
// Per parameter element:
//
//	m = beta1*m + (1-beta1)*g         first moment
//	v = beta2*v + (1-beta2)*g²        second moment
//	mHat = m / (1 - beta1^t)          bias correction
//	vHat = v / (1 - beta2^t)
//	param -= lr * mHat / (sqrt(vHat) + eps)
//
// The bias correction matters early in training, when the zero-initialized
// moments would otherwise shrink every update toward nothing.
type Adam[B tensor.Backend] struct {
	params  []*nn.Parameter[B]
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int
	m       map[*nn.Parameter[B]]*tensor.RawTensor
	v       map[*nn.Parameter[B]]*tensor.RawTensor
	backend B
}

// AdamConfig configures Adam. Zero values take the standard defaults:
// LR 0.001, betas (0.9, 0.999), eps 1e-8.
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[B]{
		params:  params,
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
		m:       make(map[*nn.Parameter[B]]*tensor.RawTensor),
		v:       make(map[*nn.Parameter[B]]*tensor.RawTensor),
		backend: backend,
	}
}

// Step applies one Adam update to every parameter with a gradient.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	biasCorrection1 := 1 - math32.Pow(a.beta1, float32(a.t))
	biasCorrection2 := 1 - math32.Pow(a.beta2, float32(a.t))

	for _, param := range a.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.AsFloat32()
		mData := a.momentFor(a.m, param).AsFloat32()
		vData := a.momentFor(a.v, param).AsFloat32()

		for i := range paramData {
			g := gradData[i]
			mData[i] = a.beta1*mData[i] + (1-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2
			paramData[i] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
		}
	}
}

func (a *Adam[B]) momentFor(moments map[*nn.Parameter[B]]*tensor.RawTensor, param *nn.Parameter[B]) *tensor.RawTensor {
	if m, ok := moments[param]; ok {
		return m
	}
	m, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, a.backend.Device())
	if err != nil {
		panic(err)
	}
	moments[param] = m
	return m
}

// ZeroGrad clears every parameter's stored gradient.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam[B]) LR() float32 { return a.lr }

// SetLR changes the learning rate.
func (a *Adam[B]) SetLR(lr float32) { a.lr = lr }

// Timestep returns the number of steps taken, the t in bias correction.
func (a *Adam[B]) Timestep() int { return a.t }

// StateDict exports both moment buffers plus the timestep, keyed
// "m.{index}", "v.{index}" and "t".
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m
		}
		if v, ok := a.v[param]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v
		}
	}

	// The timestep rides along as a one-element tensor so the whole state
	// fits the tensor-map serialization contract.
	t, err := tensor.NewRaw(tensor.Shape{1}, tensor.Int32, a.backend.Device())
	if err != nil {
		panic(err)
	}
	t.AsInt32()[0] = int32(a.t)
	stateDict["t"] = t

	return stateDict
}

// LoadStateDict restores moment buffers and the timestep.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	a.m = make(map[*nn.Parameter[B]]*tensor.RawTensor)
	a.v = make(map[*nn.Parameter[B]]*tensor.RawTensor)

	for i, param := range a.params {
		if raw, ok := stateDict[fmt.Sprintf("m.%d", i)]; ok {
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("first moment shape mismatch for parameter %d: want %v, got %v",
					i, param.Tensor().Shape(), raw.Shape())
			}
			a.m[param] = raw
		}
		if raw, ok := stateDict[fmt.Sprintf("v.%d", i)]; ok {
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("second moment shape mismatch for parameter %d: want %v, got %v",
					i, param.Tensor().Shape(), raw.Shape())
			}
			a.v[param] = raw
		}
	}

	if raw, ok := stateDict["t"]; ok {
		if raw.DType() != tensor.Int32 || raw.NumElements() != 1 {
			return fmt.Errorf("timestep must be a single int32, got %s %v", raw.DType(), raw.Shape())
		}
		a.t = int(raw.AsInt32()[0])
	}
	return nil
}
