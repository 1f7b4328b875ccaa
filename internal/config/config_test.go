package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{128}, cfg.Model.HiddenSizes)
	assert.Equal(t, "sgd", cfg.Training.Optimizer)
	assert.Equal(t, int64(42), cfg.Training.Seed)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  hidden_sizes: [256, 128]
  activation: tanh
training:
  epochs: 10
  learning_rate: 0.05
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{256, 128}, cfg.Model.HiddenSizes)
	assert.Equal(t, "tanh", cfg.Model.Activation)
	assert.Equal(t, 10, cfg.Training.Epochs)
	assert.InDelta(t, 0.05, cfg.Training.LearningRate, 1e-6)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 64, cfg.Training.BatchSize)
	assert.Equal(t, "data/mnist", cfg.Data.Dir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad activation", "model:\n  activation: softplus\n"},
		{"zero epochs", "training:\n  epochs: -1\n"},
		{"momentum out of range", "training:\n  momentum: 1.0\n"},
		{"unknown optimizer", "training:\n  optimizer: adagrad\n"},
		{"validation ratio too high", "training:\n  validation_ratio: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := config.Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.ApplyOverrides(config.Overrides{
		Epochs:       20,
		LearningRate: 0.001,
		Optimizer:    "adam",
		DataDir:      "/tmp/mnist",
		Download:     true,
	})

	assert.Equal(t, 20, cfg.Training.Epochs)
	assert.InDelta(t, 0.001, cfg.Training.LearningRate, 1e-9)
	assert.Equal(t, "adam", cfg.Training.Optimizer)
	assert.Equal(t, "/tmp/mnist", cfg.Data.Dir)
	assert.True(t, cfg.Data.Download)
	// Untouched knobs keep their values.
	assert.Equal(t, 64, cfg.Training.BatchSize)
	assert.Equal(t, int64(42), cfg.Training.Seed)
}

func TestZeroOverridesChangeNothing(t *testing.T) {
	cfg := config.Default()
	want := *cfg
	cfg.ApplyOverrides(config.Overrides{})
	assert.Equal(t, want.Training, cfg.Training)
	assert.Equal(t, want.Data, cfg.Data)
}
