package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/autodiff"
	"github.com/gradlet-ml/gradlet/internal/backend/cpu"
	"github.com/gradlet-ml/gradlet/internal/config"
	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/nn"
)

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config used for training (defaults apply when empty)")
	ckptPath := fs.String("checkpoint", "", "Checkpoint file to evaluate (required)")
	dataDir := fs.String("data-dir", "", "Override dataset directory")
	batchSize := fs.Int("batch-size", 0, "Override batch size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ckptPath == "" {
		return errors.New("-checkpoint is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(config.Overrides{DataDir: *dataDir, BatchSize: *batchSize})
	if err := cfg.Validate(); err != nil {
		return err
	}

	testSet, err := dataset.Load(cfg.Data.Dir, dataset.Test)
	if err != nil {
		return err
	}

	be := autodiff.New(cpu.New())
	// Architecture must match the checkpoint; weights are overwritten below,
	// so the initializer seed does not matter.
	model := buildModel(cfg.Model, rand.New(rand.NewSource(0)), be) //nolint:gosec

	var noOptimizer nn.OptimizerState
	ckpt, err := nn.LoadCheckpoint(*ckptPath, be, nn.Module[backend](model), noOptimizer)
	if err != nil {
		return err
	}
	log.Printf("loaded checkpoint run=%s epoch=%d train_loss=%.4f", ckpt.RunID, ckpt.Epoch, ckpt.Loss)

	loader, err := dataset.NewLoader(testSet, dataset.LoaderConfig{
		BatchSize: cfg.Training.BatchSize,
	}, be)
	if err != nil {
		return err
	}

	criterion := nn.NewCrossEntropyLoss(be)
	batches, err := loader.Batches()
	if err != nil {
		return err
	}

	var lossSum, accSum float64
	var samples int
	for _, batch := range batches {
		logits := model.Forward(batch.Images)
		loss := criterion.Forward(logits, batch.Labels)
		acc := nn.Accuracy(logits, batch.Labels)
		lossSum += float64(loss.Item()) * float64(batch.Size)
		accSum += float64(acc) * float64(batch.Size)
		samples += batch.Size
	}

	fmt.Printf("test samples: %d\n", samples)
	fmt.Printf("test loss:    %.4f\n", lossSum/float64(samples))
	fmt.Printf("test acc:     %.2f%%\n", accSum/float64(samples)*100)
	return nil
}
