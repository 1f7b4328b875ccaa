package optim_test

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/optim"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

func floatEqual(a, b, tolerance float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func newParam(t *testing.T, be *cpu.Backend, values []float32) *nn.Parameter[*cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)}, be)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return nn.NewParameter("weight", x)
}

func gradFor(t *testing.T, be *cpu.Backend, p *nn.Parameter[*cpu.Backend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	g, err := tensor.FromSlice(values, tensor.Shape{len(values)}, be)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Tensor().Raw(): g.Raw()}
}

func TestSGDStep(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{2.0})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1}, be)

	sgd.Step(gradFor(t, be, p, []float32{1.0}))

	got := p.Tensor().Data()[0]
	if !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("param after step = %f, want 1.9", got)
	}
}

func TestSGDUpdatesInPlace(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0})
	before := p.Tensor().Raw()

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1}, be)
	sgd.Step(gradFor(t, be, p, []float32{1.0}))

	if p.Tensor().Raw() != before {
		t.Error("step must update the parameter buffer in place, not replace it")
	}
}

func TestSGDMomentum(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, be)

	// Step 1: v = 1, param = 1 - 0.1*1 = 0.9
	sgd.Step(gradFor(t, be, p, []float32{1.0}))
	if got := p.Tensor().Data()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Errorf("after step 1: %f, want 0.9", got)
	}

	// Step 2: v = 0.9*1 + 1 = 1.9, param = 0.9 - 0.19 = 0.71
	sgd.Step(gradFor(t, be, p, []float32{1.0}))
	if got := p.Tensor().Data()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("after step 2: %f, want 0.71", got)
	}
}

func TestSGDSkipsParamsWithoutGradient(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{5.0})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1}, be)

	sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	if got := p.Tensor().Data()[0]; got != 5.0 {
		t.Errorf("param without gradient changed: %f", got)
	}
}

func TestSGDLearningRate(t *testing.T) {
	be := cpu.New()
	sgd := optim.NewSGD[*cpu.Backend](nil, optim.SGDConfig{LR: 0.3}, be)
	if sgd.LR() != 0.3 {
		t.Errorf("LR() = %f, want 0.3", sgd.LR())
	}
	sgd.SetLR(0.03)
	if sgd.LR() != 0.03 {
		t.Errorf("after SetLR: %f, want 0.03", sgd.LR())
	}
}

func TestSGDDefaults(t *testing.T) {
	be := cpu.New()
	sgd := optim.NewSGD[*cpu.Backend](nil, optim.SGDConfig{}, be)
	if sgd.LR() != 0.01 {
		t.Errorf("default LR = %f, want 0.01", sgd.LR())
	}
}

func TestAdamFirstStep(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{LR: 0.001}, be)

	adam.Step(gradFor(t, be, p, []float32{0.5}))

	// With bias correction the first update is lr * g/(|g| + eps) ≈ lr,
	// regardless of gradient magnitude.
	got := p.Tensor().Data()[0]
	want := float32(1.0) - 0.001*0.5/(math32.Sqrt(0.25)+1e-8)
	if !floatEqual(got, want, 1e-6) {
		t.Errorf("param after first Adam step = %f, want %f", got, want)
	}
	if adam.Timestep() != 1 {
		t.Errorf("timestep = %d, want 1", adam.Timestep())
	}
}

func TestAdamDefaults(t *testing.T) {
	be := cpu.New()
	adam := optim.NewAdam[*cpu.Backend](nil, optim.AdamConfig{}, be)
	if adam.LR() != 0.001 {
		t.Errorf("default LR = %f, want 0.001", adam.LR())
	}
}

func TestSGDStateDictRoundtrip(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0, 2.0})
	src := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, be)
	src.Step(gradFor(t, be, p, []float32{1.0, -1.0}))

	state := src.StateDict()
	if _, ok := state["velocity.0"]; !ok {
		t.Fatal("momentum SGD state dict missing velocity.0")
	}

	dst := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, be)
	if err := dst.LoadStateDict(state); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}

	// One step with unit gradients leaves velocity = grad, so the restored
	// optimizer must resume from exactly that.
	restored := dst.StateDict()["velocity.0"].AsFloat32()
	want := []float32{1.0, -1.0}
	for i, got := range restored {
		if !floatEqual(got, want[i], 1e-6) {
			t.Errorf("velocity[%d] = %f, want %f", i, got, want[i])
		}
	}
}

func TestAdamStateDictRoundtrip(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0})
	src := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{}, be)
	src.Step(gradFor(t, be, p, []float32{0.5}))
	src.Step(gradFor(t, be, p, []float32{0.5}))

	state := src.StateDict()
	for _, key := range []string{"m.0", "v.0", "t"} {
		if _, ok := state[key]; !ok {
			t.Fatalf("state dict missing %q", key)
		}
	}

	dst := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{}, be)
	if err := dst.LoadStateDict(state); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}
	if dst.Timestep() != 2 {
		t.Errorf("restored timestep = %d, want 2", dst.Timestep())
	}
}

func TestAdamLoadRejectsShapeMismatch(t *testing.T) {
	be := cpu.New()
	p := newParam(t, be, []float32{1.0, 2.0})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{}, be)

	bad, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, be.Device())
	if err != nil {
		t.Fatal(err)
	}
	if err := adam.LoadStateDict(map[string]*tensor.RawTensor{"m.0": bad}); err == nil {
		t.Error("want error for mismatched moment shape")
	}
}
