// Package engine drives candidate propagation: it repeatedly invokes the
// module chain on each candidate until the candidate is inactive or a
// step budget is exhausted, and schedules spawned secondaries.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crsim/propagation-core/internal/candidate"
	"github.com/crsim/propagation-core/internal/metrics"
	"github.com/crsim/propagation-core/internal/module"
	"github.com/crsim/propagation-core/pkg/logger"
)

// DefaultMaxSteps bounds the chain invocations per candidate when no
// explicit budget is configured.
const DefaultMaxSteps = 1000000

// Producer creates fully initialized candidates, one per call
type Producer interface {
	Produce() (*candidate.Candidate, error)
}

// Engine is the propagation driver. Its chain, budgets and collaborators
// are immutable while a run is in flight, so candidates can be processed
// by a worker pool without locking.
type Engine struct {
	chain      *module.Chain
	runManager *RunManager
	maxSteps   int
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewEngine creates a propagation engine for the given module chain
func NewEngine(runID string, chain *module.Chain) *Engine {
	return &Engine{
		chain:      chain,
		runManager: NewRunManager(runID),
		maxSteps:   DefaultMaxSteps,
		logger:     logger.Default,
	}
}

// SetLogger sets the engine's logger
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// SetMaxSteps bounds the number of chain invocations per candidate
func (e *Engine) SetMaxSteps(n int) {
	e.maxSteps = n
}

// SetCollector attaches a metrics collector updated during propagation
func (e *Engine) SetCollector(c *metrics.Collector) {
	e.collector = c
}

// RunManager returns the engine's run manager
func (e *Engine) RunManager() *RunManager {
	return e.runManager
}

// Propagate processes one candidate to termination, then its secondaries
// breadth-first. A secondary is only detached after its parent finishes,
// so it never observes parent state from a later step than the one that
// created it.
func (e *Engine) Propagate(c *candidate.Candidate) {
	queue := []*candidate.Candidate{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps := 0
		for cur.IsActive() && steps < e.maxSteps {
			e.chain.Process(cur)
			steps++
		}
		if cur.IsActive() {
			e.logger.Warn("step budget exhausted before termination",
				"steps", steps,
				"id", cur.Current.ID(),
				"trajectory_length", cur.TrajectoryLength())
		}

		secondaries := cur.DetachSecondaries()
		queue = append(queue, secondaries...)

		e.runManager.recordCandidate(cur, steps, len(secondaries))
		if e.collector != nil {
			e.collector.CandidatesProcessed.Inc()
			e.collector.StepsPerCandidate.Observe(float64(steps))
			e.collector.SecondariesSpawned.Add(float64(len(secondaries)))
			if cur.HasTag(module.DefaultRejectFlagKey) {
				e.collector.CandidatesRejected.Inc()
			}
		}
	}
}

// Run produces count candidates from src and propagates each of them,
// secondaries included, across the given number of workers. Candidates
// are produced sequentially so that a seeded source stays reproducible;
// propagation fans out since candidates share no mutable state.
func (e *Engine) Run(ctx context.Context, src Producer, count, workers int) error {
	if workers < 1 {
		workers = 1
	}
	e.logger.Info("starting propagation run",
		"run_id", e.runManager.run.ID,
		"candidates", count,
		"workers", workers,
		"max_steps", e.maxSteps)
	e.logger.Debug(e.chain.Description())

	e.runManager.Start()

	jobs := make(chan *candidate.Candidate)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				e.Propagate(c)
			}
		}()
	}

	var runErr error
produce:
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break produce
		case <-e.runManager.Context().Done():
			runErr = fmt.Errorf("run cancelled")
			break produce
		default:
		}

		c, err := src.Produce()
		if err != nil {
			runErr = fmt.Errorf("produce candidate %d: %w", i, err)
			break produce
		}
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	if runErr != nil {
		e.runManager.Fail(runErr)
		e.logger.Error("propagation run failed", "run_id", e.runManager.run.ID, "error", runErr)
		return runErr
	}

	e.runManager.Complete()
	stats := e.runManager.GetStats()
	e.logger.Info("propagation run completed",
		"run_id", e.runManager.run.ID,
		"candidates", stats["candidates"],
		"secondaries", stats["secondaries"],
		"rejected", stats["rejected"],
		"elapsed", stats["elapsed"])
	return nil
}

// Stop cancels the engine's run
func (e *Engine) Stop() {
	e.runManager.Cancel()
	e.logger.Info("propagation stopped")
}
