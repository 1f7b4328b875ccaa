package nn_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/optim"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

func buildModel(seed int64, be *cpu.Backend) *nn.Sequential[*cpu.Backend] {
	rng := rand.New(rand.NewSource(seed))
	return nn.NewSequential[*cpu.Backend](
		nn.NewLinear(4, 6, rng, be),
		nn.NewReLU[*cpu.Backend](),
		nn.NewLinear(6, 3, rng, be),
	)
}

func TestCheckpointRoundtrip(t *testing.T) {
	be := cpu.New()
	path := filepath.Join(t.TempDir(), "epoch-001.gradlet")

	model := buildModel(1, be)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.05, Momentum: 0.9}, be)

	ckpt := &nn.Checkpoint[*cpu.Backend]{
		Model:     model,
		Optimizer: optimizer,
		RunID:     "test-run",
		Epoch:     3,
		Step:      1200,
		Loss:      0.42,
	}
	require.NoError(t, ckpt.Save(path))

	restoredModel := buildModel(2, be)
	restoredOpt := optim.NewSGD(restoredModel.Parameters(), optim.SGDConfig{LR: 0.05, Momentum: 0.9}, be)
	restored, err := nn.LoadCheckpoint(path, be, nn.Module[*cpu.Backend](restoredModel), nn.OptimizerState(restoredOpt))
	require.NoError(t, err)

	assert.Equal(t, "test-run", restored.RunID)
	assert.Equal(t, 3, restored.Epoch)
	assert.Equal(t, int64(1200), restored.Step)
	assert.InDelta(t, 0.42, restored.Loss, 1e-9)

	x := tensor.Ones[float32](tensor.Shape{2, 4}, be)
	assert.Equal(t, model.Forward(x).Data(), restoredModel.Forward(x).Data(),
		"restored model must produce identical outputs")
}

func TestLoadCheckpointWithoutOptimizer(t *testing.T) {
	be := cpu.New()
	path := filepath.Join(t.TempDir(), "ckpt.gradlet")

	model := buildModel(1, be)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, be)
	ckpt := &nn.Checkpoint[*cpu.Backend]{Model: model, Optimizer: optimizer, RunID: "r", Epoch: 1}
	require.NoError(t, ckpt.Save(path))

	inference := buildModel(2, be)
	var noOptimizer nn.OptimizerState
	restored, err := nn.LoadCheckpoint(path, be, nn.Module[*cpu.Backend](inference), noOptimizer)
	require.NoError(t, err)
	assert.Nil(t, restored.Optimizer)

	x := tensor.Ones[float32](tensor.Shape{1, 4}, be)
	assert.Equal(t, model.Forward(x).Data(), inference.Forward(x).Data())
}

func TestSaveAndLoadModuleOnly(t *testing.T) {
	be := cpu.New()
	path := filepath.Join(t.TempDir(), "model.gradlet")

	model := buildModel(1, be)
	require.NoError(t, nn.Save[*cpu.Backend](model, path, "Sequential", map[string]string{"task": "digits"}))

	restored := buildModel(2, be)
	header, err := nn.Load(path, be, nn.Module[*cpu.Backend](restored))
	require.NoError(t, err)
	assert.Equal(t, "Sequential", header.ModelType)
	assert.Equal(t, "digits", header.Metadata["task"])
	assert.Nil(t, header.Training, "module-only files carry no training metadata")
}
