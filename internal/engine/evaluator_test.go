package engine

import (
	"testing"

	"classscheduler/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNewEvaluator(t *testing.T) {
	resolved := ruleResolved(t)

	t.Run("Layers ordered by priority, highest first", func(t *testing.T) {
		evaluator, err := NewEvaluator(resolved, DefaultConfig())

		assert.NoError(t, err)
		assert.False(t, evaluator.Empty())
		assert.Equal(t, []int{2, 1}, evaluator.Priorities())
	})

	t.Run("Disabled and zero-weight rules are skipped", func(t *testing.T) {
		//**Arrange
		config := DefaultConfig()
		for name, rule := range config.Rules {
			rule.Enabled = false
			config.Rules[name] = rule
		}
		zeroWeight := config.Rules["non_morning"]
		zeroWeight.Enabled = true
		zeroWeight.Weight = 0
		config.Rules["non_morning"] = zeroWeight

		//**Act
		evaluator, err := NewEvaluator(resolved, config)

		//**Assert
		assert.NoError(t, err)
		assert.True(t, evaluator.Empty())
		assert.Empty(t, evaluator.Priorities())
	})

	t.Run("Invalid configuration is rejected", func(t *testing.T) {
		config := DefaultConfig()
		config.Options.MaxSpacing = 0

		_, err := NewEvaluator(resolved, config)

		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestEvaluatorCost(t *testing.T) {
	//**Arrange: keep only two rules on distinct layers
	resolved := ruleResolved(t)
	config := DefaultConfig()
	for name, rule := range config.Rules {
		rule.Enabled = name == "curriculum_conflict" || name == "non_morning"
		config.Rules[name] = rule
	}
	evaluator, err := NewEvaluator(resolved, config)
	assert.NoError(t, err)

	// Units 0 and 1 share a curriculum; the slot is in the afternoon.
	meetings := []model.Meeting{
		{Unit: 0, Slot: slot(0, 2)},
		{Unit: 1, Slot: slot(0, 2)},
	}

	//**Act
	cost := evaluator.Cost(meetings)
	violations := evaluator.Violations(meetings)

	//**Assert: one conflict at weight 10 on the higher layer, two afternoon
	// meetings at weight 1 on the lower one
	assert.Equal(t, []int64{10, 2}, cost)
	assert.Len(t, violations, 3)
	assert.Equal(t, "curriculum_conflict", violations[0].Rule)
	assert.Equal(t, int64(10), violations[0].Weight)
	assert.Equal(t, "non_morning", violations[1].Rule)
	assert.Equal(t, "non_morning", violations[2].Rule)
}

func TestCostIsMonotone(t *testing.T) {
	//**Arrange
	resolved := ruleResolved(t)
	evaluator, err := NewEvaluator(resolved, DefaultConfig())
	assert.NoError(t, err)

	meetings := []model.Meeting{
		{Unit: 0, Slot: slot(0, 2)},
		{Unit: 0, Slot: slot(4, 3)},
		{Unit: 1, Slot: slot(0, 2)},
		{Unit: 2, Slot: slot(1, 4)},
	}

	//**Act and assert: extending a partial timetable never lowers its cost
	previous := evaluator.Cost(nil)
	for i := range meetings {
		cost := evaluator.Cost(meetings[:i+1])
		assert.LessOrEqual(t, CompareCost(previous, cost), 0)
		previous = cost
	}
}

func TestCompareCost(t *testing.T) {
	assert.Equal(t, 0, CompareCost([]int64{1, 2}, []int64{1, 2}))
	assert.Equal(t, -1, CompareCost([]int64{0, 9}, []int64{1, 0}), "the higher layer dominates")
	assert.Equal(t, 1, CompareCost([]int64{1, 3}, []int64{1, 2}))
	assert.Equal(t, 0, CompareCost(nil, nil))
}
