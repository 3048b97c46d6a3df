package sat

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

type giniSolver struct{}

// NewGiniSolver returns an in-process SATSolver backed by gini.
func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(instance SAT) ([]int64, error) {
	g := gini.New()

	for _, clause := range instance.Clauses {
		for _, literal := range clause {
			if literal == 0 {
				return nil, fmt.Errorf("literal 0 is not allowed inside a clause")
			}
			variable := literal
			if variable < 0 {
				variable = -variable
			}
			if uint64(variable) > instance.Variables {
				return nil, fmt.Errorf("literal %v references a variable beyond %v", literal, instance.Variables)
			}

			lit := z.Var(variable).Pos()
			if literal < 0 {
				lit = lit.Not()
			}
			g.Add(lit)
		}
		g.Add(0)
	}

	if g.Solve() != 1 {
		return nil, nil
	}

	assignment := make([]int64, 0, instance.Variables)
	for variable := int64(1); variable <= int64(instance.Variables); variable++ {
		if g.Value(z.Var(variable).Pos()) {
			assignment = append(assignment, variable)
		} else {
			assignment = append(assignment, -variable)
		}
	}
	return assignment, nil
}
