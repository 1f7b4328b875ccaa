// Package config loads training configuration from YAML, layered as
// defaults, then file values, then command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Training TrainingConfig `yaml:"training"`
	Data     DataConfig     `yaml:"data"`
}

// ModelConfig describes the network architecture.
type ModelConfig struct {
	HiddenSizes []int  `yaml:"hidden_sizes"`
	Activation  string `yaml:"activation"` // relu, sigmoid or tanh
}

// TrainingConfig describes the optimization run.
type TrainingConfig struct {
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	LearningRate    float32 `yaml:"learning_rate"`
	Momentum        float32 `yaml:"momentum"`
	Optimizer       string  `yaml:"optimizer"` // sgd or adam
	Seed            int64   `yaml:"seed"`
	ValidationRatio float64 `yaml:"validation_ratio"`
	LogEvery        int     `yaml:"log_every"`
	CheckpointDir   string  `yaml:"checkpoint_dir"`
}

// DataConfig locates the dataset.
type DataConfig struct {
	Dir      string `yaml:"dir"`
	Download bool   `yaml:"download"`
}

// Overrides captures CLI-supplied values; zero values mean "not set".
type Overrides struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Optimizer    string
	Seed         int64
	DataDir      string
	Download     bool
}

// Default returns the configuration used when no file is given: a
// 784-128-10 ReLU network trained for 5 epochs of SGD with momentum.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			HiddenSizes: []int{128},
			Activation:  "relu",
		},
		Training: TrainingConfig{
			Epochs:          5,
			BatchSize:       64,
			LearningRate:    0.1,
			Momentum:        0.9,
			Optimizer:       "sgd",
			Seed:            42,
			ValidationRatio: 0.1,
			LogEvery:        100,
			CheckpointDir:   "checkpoints",
		},
		Data: DataConfig{
			Dir: "data/mnist",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg from any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Training.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.Training.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.Training.LearningRate = float32(o.LearningRate)
	}
	if o.Optimizer != "" {
		c.Training.Optimizer = o.Optimizer
	}
	if o.Seed != 0 {
		c.Training.Seed = o.Seed
	}
	if o.DataDir != "" {
		c.Data.Dir = o.DataDir
	}
	if o.Download {
		c.Data.Download = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Model.HiddenSizes) == 0 {
		return errors.New("model needs at least one hidden layer")
	}
	for _, h := range c.Model.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("hidden layer size must be > 0 (got %d)", h)
		}
	}
	switch c.Model.Activation {
	case "relu", "sigmoid", "tanh":
	default:
		return fmt.Errorf("unknown activation %q (want relu, sigmoid or tanh)", c.Model.Activation)
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Training.Epochs)
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.Training.BatchSize)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.Training.LearningRate)
	}
	if c.Training.Momentum < 0 || c.Training.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1) (got %g)", c.Training.Momentum)
	}
	switch c.Training.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("unknown optimizer %q (want sgd or adam)", c.Training.Optimizer)
	}
	if c.Training.ValidationRatio < 0 || c.Training.ValidationRatio >= 1 {
		return fmt.Errorf("validation_ratio must be in [0, 1) (got %g)", c.Training.ValidationRatio)
	}
	if c.Training.LogEvery <= 0 {
		c.Training.LogEvery = 100
	}
	if c.Data.Dir == "" {
		return errors.New("data dir must be set")
	}
	return nil
}
