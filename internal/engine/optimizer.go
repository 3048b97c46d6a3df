package engine

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"classscheduler/internal/model"
	"classscheduler/internal/sat"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the terminal outcome of a solver run.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible-unproven-optimal"
	StatusInfeasible Status = "infeasible"
)

// Result is the outcome of one solver run. Meetings is empty when the
// instance is infeasible; LayerCosts is ordered like Priorities, highest
// priority first.
type Result struct {
	RunID      string
	Status     Status
	Meetings   []model.Meeting
	Violations []Violation
	Priorities []int
	LayerCosts []int64
	Candidates int64
	Nodes      int64
	Elapsed    time.Duration
}

// Optimizer drives the assignment engine towards the timetable minimizing
// the per-layer cost vector under lexicographic order. Workers explore
// disjoint branches of the same backtracking tree (partitioned by the first
// unit's pattern) and share only the running best bound.
type Optimizer struct {
	engine    *Engine
	evaluator *Evaluator
	solver    sat.SATSolver
	options   Options
	logger    *zap.Logger
}

func NewOptimizer(resolved *model.Resolved, config Config, solver sat.SATSolver, logger *zap.Logger) (*Optimizer, error) {
	evaluator, err := NewEvaluator(resolved, config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		engine:    NewEngine(resolved),
		evaluator: evaluator,
		solver:    solver,
		options:   config.Options,
		logger:    logger,
	}, nil
}

// Solve runs the feasibility probe and then the branch-and-bound search
// within the configured budget. Infeasibility and budget exhaustion are
// terminal results, not errors.
func (optimizer *Optimizer) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:      uuid.NewString(),
		Priorities: optimizer.evaluator.Priorities(),
	}
	logger := optimizer.logger.With(zap.String("run_id", result.RunID))

	feasible, err := optimizer.engine.ProbeFeasibility(optimizer.solver)
	if err != nil {
		return nil, err
	}
	if !feasible {
		if unit, unschedulable := optimizer.engine.Unschedulable(); unschedulable {
			logger.Info("hard constraints are unsatisfiable", zap.String("unschedulable_unit", unit.Label()))
		} else {
			logger.Info("hard constraints are unsatisfiable")
		}
		result.Status = StatusInfeasible
		result.Elapsed = time.Since(start)
		return result, nil
	}

	searchCtx, cancel := context.WithCancel(ctx)
	if optimizer.options.MaxTime > 0 {
		searchCtx, cancel = context.WithTimeout(ctx, optimizer.options.MaxTime)
	}
	defer cancel()

	workers := optimizer.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if optimizer.evaluator.Empty() {
		// With every rule disabled the first candidate found wins; a single
		// worker keeps that candidate deterministic.
		workers = 1
	}

	var (
		mu           sync.Mutex
		found        bool
		bestCost     []int64
		bestMeetings []model.Meeting

		nodes      atomic.Int64
		candidates atomic.Int64
		budgetHit  atomic.Bool
	)

	prune := func(assign []int, depth int) bool {
		mu.Lock()
		bound := bestCost
		bounded := found
		mu.Unlock()
		if !bounded {
			return false
		}
		// Rule costs only grow as meetings are added, so a partial cost
		// already above the bound cannot improve on it.
		partial := optimizer.evaluator.Cost(optimizer.engine.meetings(assign, depth))
		return CompareCost(partial, bound) > 0
	}

	emit := func(assign []int) bool {
		meetings := optimizer.engine.meetings(assign, len(assign))
		cost := optimizer.evaluator.Cost(meetings)

		mu.Lock()
		comparison := 1
		if found {
			comparison = CompareCost(cost, bestCost)
		}
		improved := !found || comparison < 0 ||
			(comparison == 0 && slices.CompareFunc(meetings, bestMeetings, model.CompareMeetings) < 0)
		if improved {
			found = true
			bestCost = cost
			bestMeetings = meetings
		}
		mu.Unlock()

		if improved {
			logger.Debug("improved candidate", zap.Int64s("cost", cost))
		}

		if count := candidates.Add(1); optimizer.options.MaxCandidates > 0 && count >= optimizer.options.MaxCandidates {
			budgetHit.Store(true)
			cancel()
			return false
		}
		return !optimizer.evaluator.Empty()
	}

	searchErrs := make([]error, workers)
	var group sync.WaitGroup
	for worker := range workers {
		group.Add(1)
		go func() {
			defer group.Done()
			searchErrs[worker] = optimizer.engine.search(searchCtx, searchOptions{
				rootPatterns: func(index int) bool { return index%workers == worker },
				prune:        prune,
				emit:         emit,
				nodes:        &nodes,
			})
		}()
	}
	group.Wait()

	for _, err := range searchErrs {
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		// Caller-initiated cancellation, as opposed to our own budget.
		return nil, err
	}

	result.Nodes = nodes.Load()
	result.Candidates = candidates.Load()
	result.Elapsed = time.Since(start)

	exhausted := searchCtx.Err() == nil && !budgetHit.Load()
	switch {
	case found && (exhausted || optimizer.evaluator.Empty()):
		result.Status = StatusOptimal
	case found:
		result.Status = StatusFeasible
		logger.Info("budget exhausted, best candidate so far is not proven optimal")
	default:
		result.Status = StatusInfeasible
		if !exhausted {
			logger.Warn("budget exhausted before any candidate was found")
		}
	}

	if found {
		result.Meetings = bestMeetings
		result.LayerCosts = bestCost
		result.Violations = optimizer.evaluator.Violations(bestMeetings)
	}

	logger.Info("solve finished",
		zap.String("status", string(result.Status)),
		zap.Int64s("cost", result.LayerCosts),
		zap.Int64("nodes", result.Nodes),
		zap.Int64("candidates", result.Candidates),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}
