package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/gradlet-ml/gradlet/internal/autodiff"
	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/config"
	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/optim"
	"github.com/gradlet-ml/gradlet/internal/trainer"
)

// backend is the concrete stack the CLI runs on: autodiff over the CPU
// compute backend.
type backend = *autodiff.Backend[*cpu.Backend]

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults apply when empty)")
	epochs := fs.Int("epochs", 0, "Override number of epochs")
	batchSize := fs.Int("batch-size", 0, "Override batch size")
	lr := fs.Float64("lr", 0, "Override learning rate")
	optimizer := fs.String("optimizer", "", "Override optimizer (sgd or adam)")
	seed := fs.Int64("seed", 0, "Override PRNG seed")
	dataDir := fs.String("data-dir", "", "Override dataset directory")
	download := fs.Bool("download", false, "Download MNIST if missing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(config.Overrides{
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *lr,
		Optimizer:    *optimizer,
		Seed:         *seed,
		DataDir:      *dataDir,
		Download:     *download,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Data.Download {
		log.Printf("checking MNIST files in %s", cfg.Data.Dir)
		if err := dataset.Download(ctx, cfg.Data.Dir); err != nil {
			return err
		}
	}

	trainSet, err := dataset.Load(cfg.Data.Dir, dataset.Train)
	if err != nil {
		return err
	}
	trainSet, valSet := trainSet.Split(1 - cfg.Training.ValidationRatio)
	log.Printf("dataset: %d train / %d validation samples", trainSet.Len(), valSet.Len())

	be := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(cfg.Training.Seed)) //nolint:gosec // reproducible init

	model := buildModel(cfg.Model, rng, be)
	opt, err := buildOptimizer(cfg.Training, model, be)
	if err != nil {
		return err
	}

	trainLoader, err := dataset.NewLoader(trainSet, dataset.LoaderConfig{
		BatchSize: cfg.Training.BatchSize,
		Shuffle:   true,
		Seed:      cfg.Training.Seed,
	}, be)
	if err != nil {
		return err
	}
	valLoader, err := dataset.NewLoader(valSet, dataset.LoaderConfig{
		BatchSize: cfg.Training.BatchSize,
	}, be)
	if err != nil {
		return err
	}

	tr, err := trainer.New(model, opt, be, trainLoader, valLoader, trainer.RunConfig{
		Epochs:        cfg.Training.Epochs,
		LogEvery:      cfg.Training.LogEvery,
		CheckpointDir: cfg.Training.CheckpointDir,
	})
	if err != nil {
		return err
	}
	return tr.Run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildModel assembles the MLP described by the config: 784 inputs, the
// configured hidden layers with the configured activation, 10 logits out.
func buildModel(mc config.ModelConfig, rng *rand.Rand, be backend) *nn.Sequential[backend] {
	model := nn.NewSequential[backend]()
	in := dataset.ImageSize
	for _, hidden := range mc.HiddenSizes {
		model.Add(nn.NewLinear(in, hidden, rng, be))
		model.Add(activation(mc.Activation))
		in = hidden
	}
	model.Add(nn.NewLinear(in, dataset.NumClasses, rng, be))
	return model
}

func activation(name string) nn.Module[backend] {
	switch name {
	case "sigmoid":
		return nn.NewSigmoid[backend]()
	case "tanh":
		return nn.NewTanh[backend]()
	default:
		return nn.NewReLU[backend]()
	}
}

func buildOptimizer(tc config.TrainingConfig, model nn.Module[backend], be backend) (optim.Optimizer, error) {
	switch tc.Optimizer {
	case "sgd":
		return optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       tc.LearningRate,
			Momentum: tc.Momentum,
		}, be), nil
	case "adam":
		return optim.NewAdam(model.Parameters(), optim.AdamConfig{
			LR: tc.LearningRate,
		}, be), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", tc.Optimizer)
	}
}
