// Copyright 2026 The Gradlet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/gradlet-ml/gradlet/internal/nn"
	"github.com/gradlet-ml/gradlet/internal/tensor"
)

// Module is the interface every network component implements.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a trainable tensor, typically a layer's weight or bias.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter wraps an initialized tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Linear is a fully connected layer computing y = x @ W.T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// Sigmoid applies the logistic function element-wise.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return nn.NewSigmoid[B]() }

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] { return nn.NewTanh[B]() }

// Sequential chains modules so each one's output feeds the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container over the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// CrossEntropyLoss is the standard loss for multi-class classification.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates a cross-entropy criterion over raw logits.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss(backend)
}

// MSELoss computes mean squared error.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates an MSE criterion.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] { return nn.NewMSELoss[B]() }

// Accuracy reports the fraction of logit rows whose argmax matches the target.
func Accuracy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float32 {
	return nn.Accuracy(logits, targets)
}

// Initializers.

// Xavier initializes weights from the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}

// He initializes weights from N(0, sqrt(2/fanIn)).
func He[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.He(fanIn, shape, rng, backend)
}

// Checkpointing.

// OptimizerState is the slice of an optimizer a checkpoint serializes.
type OptimizerState = nn.OptimizerState

// Checkpoint is a full training snapshot.
type Checkpoint[B tensor.Backend] = nn.Checkpoint[B]

// LoadCheckpoint restores a checkpoint into a pre-built model and optimizer.
func LoadCheckpoint[B tensor.Backend](path string, backend B, model Module[B], optimizer OptimizerState) (*Checkpoint[B], error) {
	return nn.LoadCheckpoint(path, backend, model, optimizer)
}

// Save writes a module's parameters alone to a .gradlet file.
func Save[B tensor.Backend](module Module[B], path, modelType string, metadata map[string]string) error {
	return nn.Save(module, path, modelType, metadata)
}
