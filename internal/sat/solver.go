package sat

// SATSolver decides satisfiability of a SAT instance.
type SATSolver interface {
	// Solve returns a complete assignment as signed literals (one per
	// variable, in variable order), or nil if the instance is unsatisfiable.
	Solve(instance SAT) ([]int64, error)
}
