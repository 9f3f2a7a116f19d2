package engine

import (
	"context"
	"sync"
	"time"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/internal/module"
)

// RunStatus describes the lifecycle state of a propagation run
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Run holds the record of one propagation run
type Run struct {
	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   time.Time
	Error     string

	Candidates  int64
	Secondaries int64
	Rejected    int64
	Steps       int64
}

// RunManager tracks run state and aggregates per-candidate statistics.
// All methods are safe for concurrent use.
type RunManager struct {
	mu     sync.Mutex
	run    Run
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunManager creates a run manager in the pending state
func NewRunManager(id string) *RunManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunManager{
		run:    Run{ID: id, Status: StatusPending},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns a context cancelled when the run is cancelled
func (rm *RunManager) Context() context.Context {
	return rm.ctx
}

// Start marks the run as running
func (rm *RunManager) Start() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Status = StatusRunning
	rm.run.StartTime = time.Now()
}

// Complete marks the run as completed
func (rm *RunManager) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Status = StatusCompleted
	rm.run.EndTime = time.Now()
}

// Fail marks the run as failed with the given error
func (rm *RunManager) Fail(err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Status = StatusFailed
	rm.run.EndTime = time.Now()
	if err != nil {
		rm.run.Error = err.Error()
	}
}

// Cancel cancels the run's context and marks the run as cancelled
// unless it already reached a terminal state.
func (rm *RunManager) Cancel() {
	rm.cancel()
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.run.Status == StatusPending || rm.run.Status == StatusRunning {
		rm.run.Status = StatusCancelled
		rm.run.EndTime = time.Now()
	}
}

// Status returns the run's current status
func (rm *RunManager) Status() RunStatus {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.run.Status
}

// Snapshot returns a copy of the run record
func (rm *RunManager) Snapshot() Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.run
}

func (rm *RunManager) recordCandidate(c *candidate.Candidate, steps, secondaries int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Candidates++
	rm.run.Secondaries += int64(secondaries)
	rm.run.Steps += int64(steps)
	if c.HasTag(module.DefaultRejectFlagKey) {
		rm.run.Rejected++
	}
}

// GetStats returns the run's aggregate statistics
func (rm *RunManager) GetStats() map[string]interface{} {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	elapsed := time.Duration(0)
	if !rm.run.StartTime.IsZero() {
		end := rm.run.EndTime
		if end.IsZero() {
			end = time.Now()
		}
		elapsed = end.Sub(rm.run.StartTime)
	}

	return map[string]interface{}{
		"run_id":      rm.run.ID,
		"status":      string(rm.run.Status),
		"candidates":  rm.run.Candidates,
		"secondaries": rm.run.Secondaries,
		"rejected":    rm.run.Rejected,
		"steps":       rm.run.Steps,
		"elapsed":     elapsed.String(),
	}
}
