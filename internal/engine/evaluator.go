package engine

import (
	"slices"

	"classscheduler/internal/model"
)

// Violation is one witnessed soft constraint violation with its accrued
// weight.
type Violation struct {
	Rule    string
	Witness string
	Weight  int64
}

type boundRule struct {
	name   string
	fn     ruleFunc
	weight int64
}

type costLayer struct {
	priority int
	rules    []boundRule
}

// Evaluator scores candidate timetables against the enabled soft constraint
// rules, grouped into priority layers. Scoring a partial timetable yields a
// lower bound on the score of any of its completions.
type Evaluator struct {
	rc     *ruleContext
	layers []costLayer
}

func NewEvaluator(resolved *model.Resolved, config Config) (*Evaluator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	byPriority := make(map[int][]boundRule)
	for _, name := range RuleNames() {
		rule, configured := config.Rules[name]
		if !configured || !rule.Enabled || rule.Weight == 0 {
			continue
		}
		byPriority[rule.Priority] = append(byPriority[rule.Priority], boundRule{
			name:   name,
			fn:     ruleRegistry[name],
			weight: rule.Weight,
		})
	}

	evaluator := &Evaluator{
		rc: &ruleContext{resolved: resolved, maxSpacing: config.Options.MaxSpacing},
	}
	for priority, rules := range byPriority {
		evaluator.layers = append(evaluator.layers, costLayer{priority: priority, rules: rules})
	}
	// Higher priority layers are minimized first.
	slices.SortFunc(evaluator.layers, func(a, b costLayer) int {
		return b.priority - a.priority
	})

	return evaluator, nil
}

// Empty reports whether no rule is enabled at all.
func (evaluator *Evaluator) Empty() bool {
	return len(evaluator.layers) == 0
}

// Priorities returns the priorities of the layers, highest first.
func (evaluator *Evaluator) Priorities() []int {
	priorities := make([]int, len(evaluator.layers))
	for i, layer := range evaluator.layers {
		priorities[i] = layer.priority
	}
	return priorities
}

// Cost computes the per-layer weighted violation cost of a timetable,
// ordered like Priorities.
func (evaluator *Evaluator) Cost(meetings []model.Meeting) []int64 {
	cost := make([]int64, len(evaluator.layers))
	for i, layer := range evaluator.layers {
		for _, rule := range layer.rules {
			cost[i] += rule.weight * int64(len(rule.fn(evaluator.rc, meetings)))
		}
	}
	return cost
}

// Violations reports every witnessed violation, ordered by layer, then rule
// name, then witness discovery order.
func (evaluator *Evaluator) Violations(meetings []model.Meeting) []Violation {
	violations := []Violation{}
	for _, layer := range evaluator.layers {
		for _, rule := range layer.rules {
			for _, witness := range rule.fn(evaluator.rc, meetings) {
				violations = append(violations, Violation{Rule: rule.name, Witness: witness, Weight: rule.weight})
			}
		}
	}
	return violations
}

// CompareCost orders per-layer cost vectors lexicographically: the layer
// with the highest priority dominates.
func CompareCost(a, b []int64) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
