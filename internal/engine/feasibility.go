package engine

import (
	"classscheduler/internal/sat"
)

// feasibilityInstance encodes the hard constraints as a SAT instance with
// one variable per (unit, pattern) pair:
//   - an at-least-one clause per unit forces every unit to receive a pattern;
//   - a binary clause forbids every pair of overlapping patterns of two
//     teacher-sharing units.
//
// The encoding is equisatisfiable with the search problem: any model picks
// at least one conflict-free pattern per unit, and any valid timetable is a
// model. At-most-one clauses are therefore unnecessary.
func (engine *Engine) feasibilityInstance() sat.SAT {
	offsets := make([]uint64, len(engine.patterns))
	var variables uint64
	for d, patterns := range engine.patterns {
		offsets[d] = variables
		variables += uint64(len(patterns))
	}

	variable := func(position, pattern int) int64 {
		return int64(offsets[position]) + int64(pattern) + 1
	}

	instance := sat.SAT{Variables: variables, Clauses: [][]int64{}}

	//** Completeness: every unit gets some pattern
	for d, patterns := range engine.patterns {
		clause := make([]int64, len(patterns))
		for p := range patterns {
			clause[p] = variable(d, p)
		}
		instance.Clauses = append(instance.Clauses, clause)
	}

	//** Conflicts: teacher-sharing units never occupy a common slot
	for d, patterns := range engine.patterns {
		for _, later := range engine.neighbors[d] {
			for p, pattern := range patterns {
				for q, other := range engine.patterns[later] {
					if pattern.Occupied&other.Occupied != 0 {
						instance.Clauses = append(instance.Clauses, []int64{-variable(d, p), -variable(later, q)})
					}
				}
			}
		}
	}

	return instance
}

// ProbeFeasibility asks the SAT solver for a quick satisfiability verdict
// before the full search. It returns false when no hard-constraint-valid
// timetable exists.
func (engine *Engine) ProbeFeasibility(solver sat.SATSolver) (bool, error) {
	if _, unschedulable := engine.Unschedulable(); unschedulable {
		return false, nil
	}
	solution, err := solver.Solve(engine.feasibilityInstance())
	if err != nil {
		return false, err
	}
	return solution != nil, nil
}
