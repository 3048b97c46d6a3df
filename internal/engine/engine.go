package engine

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"classscheduler/internal/model"

	"github.com/samber/lo"
)

var errStopSearch = errors.New("search stopped")

// Engine enumerates hard-constraint-valid timetables by backtracking over
// units ordered most-constrained-first, with forward checking across units
// that share a teacher. It carries no state between searches, so the same
// engine can be invoked repeatedly and concurrently.
type Engine struct {
	resolved *model.Resolved

	order    []int       // search position -> unit index, fewest patterns first
	patterns [][]pattern // patterns per search position

	// neighbors[d] lists the later search positions whose unit shares a
	// teacher with the unit at position d.
	neighbors [][]int
}

func NewEngine(resolved *model.Resolved) *Engine {
	engine := &Engine{resolved: resolved}

	byUnit := lo.Map(resolved.Units, func(unit *model.Unit, _ int) []pattern {
		return patternsOf(unit)
	})

	engine.order = lo.RangeFrom(0, len(resolved.Units))
	slices.SortStableFunc(engine.order, func(a, b int) int {
		return len(byUnit[a]) - len(byUnit[b])
	})

	engine.patterns = lo.Map(engine.order, func(unit int, _ int) []pattern {
		return byUnit[unit]
	})

	engine.neighbors = make([][]int, len(engine.order))
	for d, unit := range engine.order {
		for later := d + 1; later < len(engine.order); later++ {
			if resolved.SharedTeacher[unit][engine.order[later]] {
				engine.neighbors[d] = append(engine.neighbors[d], later)
			}
		}
	}

	return engine
}

// Unschedulable returns a unit that has no legal pattern at all, if any.
// Such a unit makes the whole instance trivially infeasible.
func (engine *Engine) Unschedulable() (*model.Unit, bool) {
	for d, patterns := range engine.patterns {
		if len(patterns) == 0 {
			return engine.resolved.Units[engine.order[d]], true
		}
	}
	return nil, false
}

// meetings materializes the candidate timetable of the first depth assigned
// search positions, sorted canonically.
func (engine *Engine) meetings(assign []int, depth int) []model.Meeting {
	meetings := []model.Meeting{}
	for d := range depth {
		unit := engine.order[d]
		for _, slot := range engine.resolved.Units[unit].Fixed {
			meetings = append(meetings, model.Meeting{Unit: unit, Slot: slot, Fixed: true})
		}
		for _, slot := range engine.patterns[d][assign[d]].Slots {
			meetings = append(meetings, model.Meeting{Unit: unit, Slot: slot})
		}
	}
	slices.SortFunc(meetings, model.CompareMeetings)
	return meetings
}

type searchOptions struct {
	// rootPatterns filters the patterns explored for the first search
	// position; nil explores all of them. Used to partition the tree
	// across workers.
	rootPatterns func(index int) bool

	// prune, if non-nil, is consulted after every assignment; returning
	// true abandons the branch.
	prune func(assign []int, depth int) bool

	// emit receives every complete valid assignment; returning false stops
	// the search.
	emit func(assign []int) bool

	// nodes, if non-nil, counts explored assignments.
	nodes *atomic.Int64
}

// search walks the backtracking tree. Forward checking keeps one active
// pattern list per unassigned position and prunes the lists of
// teacher-sharing units on every assignment.
func (engine *Engine) search(ctx context.Context, opts searchOptions) error {
	total := len(engine.patterns)
	assign := make([]int, total)

	active := make([][]int, total)
	for d, patterns := range engine.patterns {
		active[d] = lo.RangeFrom(0, len(patterns))
		if len(patterns) == 0 {
			return nil // trivially infeasible, nothing to enumerate
		}
	}

	err := engine.explore(ctx, opts, assign, active, 0)
	if errors.Is(err, errStopSearch) {
		return nil
	}
	return err
}

func (engine *Engine) explore(ctx context.Context, opts searchOptions, assign []int, active [][]int, depth int) error {
	if depth == len(engine.patterns) {
		if !opts.emit(assign) {
			return errStopSearch
		}
		return nil
	}

	for _, candidate := range active[depth] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth == 0 && opts.rootPatterns != nil && !opts.rootPatterns(candidate) {
			continue
		}

		assign[depth] = candidate
		if opts.nodes != nil {
			opts.nodes.Add(1)
		}
		if opts.prune != nil && opts.prune(assign, depth+1) {
			continue
		}

		//** Forward checking: drop overlapping patterns of teacher-sharing units
		occupied := engine.patterns[depth][candidate].Occupied
		type savedDomain struct {
			position int
			patterns []int
		}
		saved := []savedDomain{}
		wipedOut := false
		for _, later := range engine.neighbors[depth] {
			remaining := lo.Filter(active[later], func(index int, _ int) bool {
				return engine.patterns[later][index].Occupied&occupied == 0
			})
			if len(remaining) == len(active[later]) {
				continue
			}
			saved = append(saved, savedDomain{later, active[later]})
			active[later] = remaining
			if len(remaining) == 0 {
				wipedOut = true
				break
			}
		}

		if !wipedOut {
			if err := engine.explore(ctx, opts, assign, active, depth+1); err != nil {
				return err
			}
		}

		for _, entry := range saved {
			active[entry.position] = entry.patterns
		}
	}

	return nil
}

// Enumerate yields complete hard-constraint-valid timetables in
// deterministic order until emit returns false or the tree is exhausted.
func (engine *Engine) Enumerate(ctx context.Context, emit func(meetings []model.Meeting) bool) error {
	return engine.search(ctx, searchOptions{
		emit: func(assign []int) bool {
			return emit(engine.meetings(assign, len(assign)))
		},
	})
}
