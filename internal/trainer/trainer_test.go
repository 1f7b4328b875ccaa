package trainer_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/autodiff"
	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/optim"
	"github.com/gradlet-ml/gradlet/internal/trainer"
)

type backend = *autodiff.Backend[*cpu.Backend]

func smallModel(be backend) *nn.Sequential[backend] {
	rng := rand.New(rand.NewSource(42))
	return nn.NewSequential[backend](
		nn.NewLinear(dataset.ImageSize, 16, rng, be),
		nn.NewReLU[backend](),
		nn.NewLinear(16, dataset.NumClasses, rng, be),
	)
}

func loaders(t *testing.T, be backend) (train, val *dataset.Loader[backend]) {
	t.Helper()
	trainSet, valSet := dataset.Synthetic(60).Split(0.8)

	train, err := dataset.NewLoader(trainSet, dataset.LoaderConfig{BatchSize: 12, Shuffle: true, Seed: 1}, be)
	require.NoError(t, err)
	val, err = dataset.NewLoader(valSet, dataset.LoaderConfig{BatchSize: 12}, be)
	require.NoError(t, err)
	return train, val
}

func TestRunDrivesLossDown(t *testing.T) {
	be := autodiff.New(cpu.New())
	model := smallModel(be)
	train, val := loaders(t, be)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5, Momentum: 0.9}, be)

	tr, err := trainer.New[*cpu.Backend](model, sgd, be, train, val, trainer.RunConfig{Epochs: 8})
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	h := tr.History()
	require.Equal(t, 8, h.Epochs())
	first, last := h.TrainLoss[0], h.TrainLoss[len(h.TrainLoss)-1]
	assert.Less(t, last, first, "loss must fall on the banded synthetic digits (first %.4f, last %.4f)", first, last)
	assert.Greater(t, h.ValAccuracy[len(h.ValAccuracy)-1], 0.5,
		"the classes are linearly separable bands, the model should learn most of them")
}

func TestRunWritesCheckpoints(t *testing.T) {
	be := autodiff.New(cpu.New())
	model := smallModel(be)
	train, val := loaders(t, be)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, be)

	dir := t.TempDir()
	tr, err := trainer.New[*cpu.Backend](model, sgd, be, train, val, trainer.RunConfig{Epochs: 2, CheckpointDir: dir})
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	for _, name := range []string{"epoch-001.gradlet", "epoch-002.gradlet"} {
		path := filepath.Join(dir, name)
		restored := smallModel(be)
		ckpt, err := nn.LoadCheckpoint(path, be, nn.Module[backend](restored), nil)
		require.NoError(t, err, "checkpoint %s must be readable", name)
		assert.Equal(t, tr.RunID(), ckpt.RunID)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	be := autodiff.New(cpu.New())
	model := smallModel(be)
	train, val := loaders(t, be)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, be)

	tr, err := trainer.New[*cpu.Backend](model, sgd, be, train, val, trainer.RunConfig{Epochs: 100})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Run(ctx), context.Canceled)
}

func TestNewRejectsZeroEpochs(t *testing.T) {
	be := autodiff.New(cpu.New())
	model := smallModel(be)
	train, val := loaders(t, be)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, be)

	_, err := trainer.New[*cpu.Backend](model, sgd, be, train, val, trainer.RunConfig{})
	require.Error(t, err)
}

func TestEvaluateLeavesTapeEmpty(t *testing.T) {
	be := autodiff.New(cpu.New())
	model := smallModel(be)
	train, val := loaders(t, be)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, be)

	tr, err := trainer.New[*cpu.Backend](model, sgd, be, train, val, trainer.RunConfig{Epochs: 1})
	require.NoError(t, err)

	_, acc, err := tr.Evaluate(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.Equal(t, 0, be.Tape().NumOps(), "evaluation must not leave ops on the tape")
}
