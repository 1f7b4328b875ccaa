package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gradlet-ml/gradlet/internal/metrics"
)

func TestWindowAggregates(t *testing.T) {
	var w metrics.Window
	w.Record(64, 100*time.Millisecond, 2.0)
	w.Record(64, 100*time.Millisecond, 1.0)

	snap := w.Snapshot()
	assert.InDelta(t, 640.0, snap.SamplesPerSec, 1e-9)
	assert.InDelta(t, 100.0, snap.AvgStepMS, 1e-9)
	assert.InDelta(t, 1.5, snap.AvgLoss, 1e-9)
	assert.InDelta(t, 1.0, snap.LastLoss, 1e-9)
}

func TestWindowResetsAfterSnapshot(t *testing.T) {
	var w metrics.Window
	w.Record(32, 50*time.Millisecond, 3.0)
	_ = w.Snapshot()

	snap := w.Snapshot()
	assert.Zero(t, snap.SamplesPerSec)
	assert.Zero(t, snap.AvgLoss)
	assert.InDelta(t, 3.0, snap.LastLoss, 1e-9, "last loss survives the reset")
}

func TestEmptyWindowSnapshot(t *testing.T) {
	var w metrics.Window
	snap := w.Snapshot()
	assert.Zero(t, snap.SamplesPerSec)
	assert.Zero(t, snap.AvgStepMS)
}

func TestHistorySummary(t *testing.T) {
	var h metrics.History
	h.RecordEpoch(2.0, 1.9, 0.40)
	h.RecordEpoch(1.0, 1.1, 0.85)
	h.RecordEpoch(0.5, 0.9, 0.80)

	assert.Equal(t, 3, h.Epochs())

	s := h.Summary()
	assert.InDelta(t, 0.5, s.FinalTrainLoss, 1e-9)
	assert.InDelta(t, 0.9, s.FinalValLoss, 1e-9)
	assert.InDelta(t, 0.85, s.BestValAcc, 1e-9)
	assert.Equal(t, 2, s.BestEpoch, "epochs are reported 1-based")
	assert.InDelta(t, 3.5/3.0, s.TrainLossMean, 1e-9)
	assert.Greater(t, s.TrainLossStd, 0.0)
}

func TestEmptyHistorySummary(t *testing.T) {
	var h metrics.History
	assert.Equal(t, metrics.Summary{}, h.Summary())
}
