package pipeline

import (
	"sync"
	"time"

	"space-matchmaker/internal/model"
	"space-matchmaker/internal/store"

	"go.uber.org/zap"
)

// Stage names, in execution order
const (
	StageLoad    = "load"
	StageResolve = "resolve"
	StageCoerce  = "coerce"
	StageFilter  = "filter"
	StageExport  = "export"
)

// RunTracker records per-stage timings and record counts for one match run.
// When Persist is set every transition is also written to the run history store.
type RunTracker struct {
	RunID   string
	Persist bool
	Logger  *zap.Logger

	mutex  sync.RWMutex
	stages []model.StageMetrics
}

// NewRunTracker creates a tracker for runID.
func NewRunTracker(runID string, persist bool, logger *zap.Logger) *RunTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunTracker{RunID: runID, Persist: persist, Logger: logger}
}

// StartStage marks the start of a stage
func (rt *RunTracker) StartStage(stage string) {
	if rt == nil {
		return
	}
	now := time.Now()

	rt.mutex.Lock()
	rt.stages = append(rt.stages, model.StageMetrics{
		Stage:     stage,
		Status:    "running",
		StartTime: now,
	})
	rt.mutex.Unlock()

	rt.Logger.Debug("stage started", zap.String("run_id", rt.RunID), zap.String("stage", stage))
	rt.save(stage, "started", &now, nil, 0, 0)
}

// EndStage marks a stage completed with the number of records it produced
func (rt *RunTracker) EndStage(stage string, records int) {
	rt.finish(stage, "completed", records, 0)
}

// FailStage marks a stage failed
func (rt *RunTracker) FailStage(stage string, err error) {
	if rt == nil {
		return
	}
	rt.Logger.Warn("stage failed", zap.String("run_id", rt.RunID), zap.String("stage", stage), zap.Error(err))
	rt.finish(stage, "failed", 0, 1)
}

func (rt *RunTracker) finish(stage, status string, records, errCount int) {
	if rt == nil {
		return
	}
	now := time.Now()

	rt.mutex.Lock()
	var start time.Time
	for i := len(rt.stages) - 1; i >= 0; i-- {
		s := &rt.stages[i]
		if s.Stage != stage || s.EndTime != nil {
			continue
		}
		s.EndTime = &now
		s.Duration = now.Sub(s.StartTime)
		s.Status = status
		s.RecordsProcessed = records
		s.ErrorCount = errCount
		start = s.StartTime
		break
	}
	rt.mutex.Unlock()

	rt.Logger.Debug("stage finished",
		zap.String("run_id", rt.RunID),
		zap.String("stage", stage),
		zap.String("status", status),
		zap.Int("records", records),
	)
	if start.IsZero() {
		start = now
	}
	rt.save(stage, status, &start, &now, records, errCount)
}

// Stages returns a copy of the recorded stages in start order.
func (rt *RunTracker) Stages() []model.StageMetrics {
	if rt == nil {
		return nil
	}
	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	out := make([]model.StageMetrics, len(rt.stages))
	copy(out, rt.stages)
	return out
}

func (rt *RunTracker) save(stage, status string, start, end *time.Time, records, errCount int) {
	if !rt.Persist {
		return
	}
	if err := store.SaveStageProgress(rt.RunID, stage, status, start, end, records, errCount); err != nil {
		rt.Logger.Warn("failed to save stage progress", zap.String("run_id", rt.RunID), zap.Error(err))
	}
}
