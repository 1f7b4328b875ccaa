// Package trainer runs the mini-batch gradient descent loop: forward pass,
// loss, backward pass, optimizer step, repeated over shuffled epochs with
// per-epoch validation and checkpointing.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gradlet-ml/gradlet/internal/autodiff"
	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/metrics"
	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/optim"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Epochs        int
	LogEvery      int
	CheckpointDir string // empty disables checkpointing
}

// Trainer owns one training run. B is the inner compute backend; the
// trainer always works through the autodiff decorator so the forward pass
// lands on the tape.
type Trainer[B tensor.Backend] struct {
	model     nn.Module[*autodiff.Backend[B]]
	criterion *nn.CrossEntropyLoss[*autodiff.Backend[B]]
	optimizer optim.Optimizer
	backend   *autodiff.Backend[B]
	train     *dataset.Loader[*autodiff.Backend[B]]
	val       *dataset.Loader[*autodiff.Backend[B]]
	cfg       RunConfig

	runID   string
	history metrics.History
}

// New creates a Trainer. The validation loader may be nil, in which case
// epochs are logged on training loss alone.
func New[B tensor.Backend](
	model nn.Module[*autodiff.Backend[B]],
	optimizer optim.Optimizer,
	backend *autodiff.Backend[B],
	train, val *dataset.Loader[*autodiff.Backend[B]],
	cfg RunConfig,
) (*Trainer[B], error) {
	if cfg.Epochs <= 0 {
		return nil, errors.New("trainer: epochs must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 100
	}
	return &Trainer[B]{
		model:     model,
		criterion: nn.NewCrossEntropyLoss(backend),
		optimizer: optimizer,
		backend:   backend,
		train:     train,
		val:       val,
		cfg:       cfg,
		runID:     uuid.NewString(),
	}, nil
}

// RunID returns the unique identifier of this run, also stamped into
// every checkpoint it writes.
func (t *Trainer[B]) RunID() string { return t.runID }

// History returns the per-epoch record of the run so far.
func (t *Trainer[B]) History() *metrics.History { return &t.history }

// Run executes the training loop until the epoch budget is spent or the
// context is canceled.
func (t *Trainer[B]) Run(ctx context.Context) error {
	log.Printf("run=%s starting: epochs=%d batches_per_epoch=%d", t.runID, t.cfg.Epochs, t.train.NumBatches())

	step := int64(0)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		trainLoss, err := t.runEpoch(ctx, epoch, &step)
		if err != nil {
			return err
		}

		valLoss, valAcc := 0.0, 0.0
		if t.val != nil {
			valLoss, valAcc, err = t.Evaluate(ctx)
			if err != nil {
				return err
			}
		}
		t.history.RecordEpoch(trainLoss, valLoss, valAcc)

		log.Printf("run=%s epoch=%d train_loss=%.4f val_loss=%.4f val_acc=%.2f%%",
			t.runID, epoch, trainLoss, valLoss, valAcc*100)

		if t.cfg.CheckpointDir != "" {
			if err := t.saveCheckpoint(epoch, step, trainLoss); err != nil {
				return err
			}
		}
	}

	summary := t.history.Summary()
	log.Printf("run=%s done: best_val_acc=%.2f%% (epoch %d) final_train_loss=%.4f",
		t.runID, summary.BestValAcc*100, summary.BestEpoch, summary.FinalTrainLoss)
	return nil
}

// runEpoch performs one pass over the shuffled training set and returns
// the mean loss across its batches.
func (t *Trainer[B]) runEpoch(ctx context.Context, epoch int, step *int64) (float64, error) {
	batches, err := t.train.Batches()
	if err != nil {
		return 0, err
	}

	var window metrics.Window
	var lossSum float64
	for i, batch := range batches {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		start := time.Now()
		loss := t.trainStep(batch)
		window.Record(batch.Size, time.Since(start), loss)
		lossSum += loss
		*step++

		if (i+1)%t.cfg.LogEvery == 0 {
			snap := window.Snapshot()
			log.Printf("run=%s epoch=%d batch=%d/%d loss=%.4f samples_per_sec=%.0f step_ms=%.1f",
				t.runID, epoch, i+1, len(batches), snap.AvgLoss, snap.SamplesPerSec, snap.AvgStepMS)
		}
	}
	return lossSum / float64(len(batches)), nil
}

// trainStep runs forward, loss, backward and the optimizer update for one
// batch, returning the batch loss.
func (t *Trainer[B]) trainStep(batch *dataset.Batch[*autodiff.Backend[B]]) float64 {
	tape := t.backend.Tape()
	tape.Clear()
	tape.StartRecording()

	logits := t.model.Forward(batch.Images)
	loss := t.criterion.Forward(logits, batch.Labels)

	grads := autodiff.Backward(loss, t.backend)
	tape.StopRecording()

	t.optimizer.Step(grads)
	t.optimizer.ZeroGrad()
	tape.Clear()

	return float64(loss.Item())
}

// Evaluate runs the model over the validation loader with recording off
// and returns mean loss and accuracy, weighted by batch size.
func (t *Trainer[B]) Evaluate(ctx context.Context) (loss, accuracy float64, err error) {
	batches, err := t.val.Batches()
	if err != nil {
		return 0, 0, err
	}

	tape := t.backend.Tape()
	tape.StopRecording()
	defer tape.Clear()

	var lossSum, accSum float64
	var samples int
	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		default:
		}

		logits := t.model.Forward(batch.Images)
		batchLoss := t.criterion.Forward(logits, batch.Labels)
		batchAcc := nn.Accuracy(logits, batch.Labels)

		lossSum += float64(batchLoss.Item()) * float64(batch.Size)
		accSum += float64(batchAcc) * float64(batch.Size)
		samples += batch.Size
	}
	if samples == 0 {
		return 0, 0, errors.New("trainer: validation set is empty")
	}
	return lossSum / float64(samples), accSum / float64(samples), nil
}

func (t *Trainer[B]) saveCheckpoint(epoch int, step int64, loss float64) error {
	if err := os.MkdirAll(t.cfg.CheckpointDir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	path := filepath.Join(t.cfg.CheckpointDir, fmt.Sprintf("epoch-%03d.gradlet", epoch))

	ckpt := &nn.Checkpoint[*autodiff.Backend[B]]{
		Model:     t.model,
		Optimizer: t.optimizer,
		RunID:     t.runID,
		Epoch:     epoch,
		Step:      step,
		Loss:      loss,
	}
	if err := ckpt.Save(path); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	log.Printf("run=%s saved checkpoint %s", t.runID, path)
	return nil
}
