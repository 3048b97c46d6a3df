package engine

import (
	"classscheduler/internal/model"
)

// slotMask is a bitset over the 30 (weekday, period) slots.
type slotMask uint64

func maskOf(slots []model.Slot) slotMask {
	var mask slotMask
	for _, slot := range slots {
		mask |= 1 << slot.Index()
	}
	return mask
}

// pattern is one legal placement of a unit's unfixed meetings. Slots holds
// the unfixed slots in canonical order; Occupied covers fixed slots as well,
// since fixed meetings still participate in conflict propagation.
type pattern struct {
	Slots    []model.Slot
	Occupied slotMask
}

// patternsOf enumerates every legal pattern of a unit in deterministic
// (lexicographic) order:
//   - units with no unfixed meetings have a single empty pattern;
//   - double units place their two unfixed meetings on one weekday, in two
//     periods exactly one apart;
//   - all other units pick any combination of distinct domain slots.
func patternsOf(unit *model.Unit) []pattern {
	fixed := maskOf(unit.Fixed)
	unfixed := unit.Unfixed()

	if unfixed == 0 {
		return []pattern{{Slots: nil, Occupied: fixed}}
	}

	patterns := []pattern{}
	if unit.IsDouble {
		inDomain := maskOf(unit.Domain)
		for _, first := range unit.Domain {
			if int(first.Period) == model.TotalPeriods-1 {
				continue
			}
			second := model.Slot{Weekday: first.Weekday, Period: first.Period + 1}
			if inDomain&(1<<second.Index()) == 0 {
				continue
			}
			slots := []model.Slot{first, second}
			patterns = append(patterns, pattern{Slots: slots, Occupied: fixed | maskOf(slots)})
		}
		return patterns
	}

	combination := make([]model.Slot, 0, unfixed)
	var combine func(start int)
	combine = func(start int) {
		if len(combination) == unfixed {
			slots := make([]model.Slot, unfixed)
			copy(slots, combination)
			patterns = append(patterns, pattern{Slots: slots, Occupied: fixed | maskOf(slots)})
			return
		}
		// Not enough slots left to complete the combination.
		for i := start; i <= len(unit.Domain)-(unfixed-len(combination)); i++ {
			combination = append(combination, unit.Domain[i])
			combine(i + 1)
			combination = combination[:len(combination)-1]
		}
	}
	combine(0)

	return patterns
}
