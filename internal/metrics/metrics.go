// Package metrics aggregates per-step training measurements into loggable
// snapshots and keeps a per-epoch history for end-of-run summaries.
package metrics

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Window accumulates step measurements between log lines.
type Window struct {
	samples  int
	compute  time.Duration
	steps    int
	lossSum  float64
	lastLoss float64
}

// Record adds one training step to the window.
func (w *Window) Record(batchSize int, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.compute += computeTime
	w.steps++
	w.lossSum += loss
	w.lastLoss = loss
}

// Snapshot returns the aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastLoss: w.lastLoss}
	if w.compute > 0 {
		snap.SamplesPerSec = float64(w.samples) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgStepMS = (w.compute.Seconds() * 1000) / float64(w.steps)
		snap.AvgLoss = w.lossSum / float64(w.steps)
	}

	w.samples = 0
	w.compute = 0
	w.steps = 0
	w.lossSum = 0
	return snap
}

// Snapshot represents loggable step metrics.
type Snapshot struct {
	SamplesPerSec float64
	AvgStepMS     float64
	AvgLoss       float64
	LastLoss      float64
}

// History records one entry per epoch across a training run.
type History struct {
	TrainLoss   []float64
	ValLoss     []float64
	ValAccuracy []float64
}

// RecordEpoch appends one epoch's results.
func (h *History) RecordEpoch(trainLoss, valLoss, valAccuracy float64) {
	h.TrainLoss = append(h.TrainLoss, trainLoss)
	h.ValLoss = append(h.ValLoss, valLoss)
	h.ValAccuracy = append(h.ValAccuracy, valAccuracy)
}

// Epochs returns the number of recorded epochs.
func (h *History) Epochs() int { return len(h.TrainLoss) }

// Summary condenses the run: final and best values plus loss variability,
// enough to compare two runs from a log line.
func (h *History) Summary() Summary {
	if h.Epochs() == 0 {
		return Summary{}
	}
	best := floats.MaxIdx(h.ValAccuracy)
	return Summary{
		FinalTrainLoss: h.TrainLoss[len(h.TrainLoss)-1],
		FinalValLoss:   h.ValLoss[len(h.ValLoss)-1],
		BestValAcc:     h.ValAccuracy[best],
		BestEpoch:      best + 1,
		TrainLossMean:  stat.Mean(h.TrainLoss, nil),
		TrainLossStd:   stat.StdDev(h.TrainLoss, nil),
	}
}

// Summary is the condensed view of a run's History.
type Summary struct {
	FinalTrainLoss float64
	FinalValLoss   float64
	BestValAcc     float64
	BestEpoch      int
	TrainLossMean  float64
	TrainLossStd   float64
}
