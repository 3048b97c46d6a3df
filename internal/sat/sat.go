package sat

// SAT is a propositional satisfiability instance in conjunctive normal form.
// Variables are numbered from 1 to Variables; a negative literal denotes the
// negation of its variable.
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}
