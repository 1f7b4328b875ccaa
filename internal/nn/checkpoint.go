package nn

import (
	"fmt"
	"strings"
	"time"

	"github.com/gradlet-ml/gradlet/internal/checkpoint"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// OptimizerState is the slice of an optimizer a checkpoint needs: its
// tensors and learning rate. Declared here rather than importing optim to
// avoid an import cycle; the optim package's optimizers satisfy it.
type OptimizerState interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
	LR() float32
}

// Checkpoint is a full training snapshot: model parameters, optimizer
// state and enough metadata to resume the run where it stopped.
type Checkpoint[B tensor.Backend] struct {
	Model     Module[B]
	Optimizer OptimizerState
	RunID     string
	Epoch     int
	Step      int64
	Loss      float64
	CreatedAt time.Time
}

const optimizerPrefix = "optimizer."

// Save writes the checkpoint to a .gradlet file. Optimizer tensors are
// stored under an "optimizer." prefix alongside the model parameters.
func (c *Checkpoint[B]) Save(path string) error {
	combined := make(map[string]*tensor.RawTensor)
	for name, raw := range c.Model.StateDict() {
		combined[name] = raw
	}
	if c.Optimizer != nil {
		for name, raw := range c.Optimizer.StateDict() {
			combined[optimizerPrefix+name] = raw
		}
	}

	header := checkpoint.Header{
		ModelType: "Checkpoint",
		CreatedAt: time.Now().UTC(),
		Training: &checkpoint.TrainingMeta{
			RunID: c.RunID,
			Epoch: c.Epoch,
			Step:  c.Step,
			Loss:  c.Loss,
		},
	}
	if c.Optimizer != nil {
		header.Metadata = map[string]string{
			"lr": fmt.Sprintf("%g", c.Optimizer.LR()),
		}
	}

	w, err := checkpoint.NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStateDictWithHeader(combined, header); err != nil {
		w.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return w.Close()
}

// LoadCheckpoint restores a checkpoint into a pre-built model and
// optimizer. Both must have the same architecture and configuration as
// when the file was written. A nil optimizer skips optimizer state, which
// is how a model is loaded for inference only.
func LoadCheckpoint[B tensor.Backend](
	path string,
	backend B,
	model Module[B],
	optimizer OptimizerState,
) (*Checkpoint[B], error) {
	r, err := checkpoint.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	header := r.Header()
	if header.Training == nil {
		return nil, fmt.Errorf("%s is not a training checkpoint", path)
	}

	stateDict, err := r.ReadStateDict(backend.Device())
	if err != nil {
		return nil, fmt.Errorf("read state dict: %w", err)
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimizerState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if strings.HasPrefix(name, optimizerPrefix) {
			optimizerState[strings.TrimPrefix(name, optimizerPrefix)] = raw
		} else {
			modelState[name] = raw
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("load model state: %w", err)
	}
	if optimizer != nil {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("load optimizer state: %w", err)
		}
	}

	return &Checkpoint[B]{
		Model:     model,
		Optimizer: optimizer,
		RunID:     header.Training.RunID,
		Epoch:     header.Training.Epoch,
		Step:      header.Training.Step,
		Loss:      header.Training.Loss,
		CreatedAt: header.CreatedAt,
	}, nil
}

// Save writes a module's parameters alone to a .gradlet file, with no
// training metadata. Use Checkpoint.Save to keep optimizer state too.
func Save[B tensor.Backend](module Module[B], path, modelType string, metadata map[string]string) error {
	w, err := checkpoint.NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStateDict(module.StateDict(), modelType, metadata); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Load reads parameters from a .gradlet file into a pre-built module.
func Load[B tensor.Backend](path string, backend B, module Module[B]) (checkpoint.Header, error) {
	r, err := checkpoint.NewReader(path)
	if err != nil {
		return checkpoint.Header{}, err
	}
	defer r.Close()

	stateDict, err := r.ReadStateDict(backend.Device())
	if err != nil {
		return checkpoint.Header{}, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return checkpoint.Header{}, err
	}
	return r.Header(), nil
}
