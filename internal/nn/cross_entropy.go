package nn

import (
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// CrossEntropyLoss is the standard loss for multi-class classification.
//
// It consumes raw logits, not probabilities: the backend fuses softmax and
// negative log-likelihood into one operation using the log-sum-exp trick,
// which is both numerically stable (no overflow past logits of ~88 in
// float32) and gives the famously simple gradient softmax(z) - onehot.
//
//	criterion := nn.NewCrossEntropyLoss(backend)
//	logits := model.Forward(images)            // [batch, classes]
//	loss := criterion.Forward(logits, labels)  // labels: [batch] class indices
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward computes the mean loss over the batch as a shape-[1] tensor.
// Under the autodiff decorator the fused op lands on the tape.
func (c *CrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss: want 2D logits [batch, classes], got %v", shape))
	}
	if targets.NumElements() != shape[0] {
		panic(fmt.Sprintf("CrossEntropyLoss: %d logit rows but %d targets", shape[0], targets.NumElements()))
	}
	return logits.CrossEntropy(targets)
}

// Parameters returns nil; loss functions have no trainable parameters.
func (c *CrossEntropyLoss[B]) Parameters() []*Parameter[B] { return nil }

// Accuracy reports the fraction of rows whose argmax matches the target,
// a float in [0, 1]. Purely an evaluation metric; nothing is recorded.
func Accuracy[B tensor.Backend](
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) float32 {
	predictions := logits.Argmax(1).Data()
	targetData := targets.Data()
	if len(predictions) != len(targetData) {
		panic(fmt.Sprintf("Accuracy: %d predictions but %d targets", len(predictions), len(targetData)))
	}

	correct := 0
	for i, p := range predictions {
		if p == targetData[i] {
			correct++
		}
	}
	return float32(correct) / float32(len(predictions))
}
