package engine

import (
	"fmt"
	"slices"

	"classscheduler/internal/model"

	"github.com/samber/lo"
)

// A rule is a pure cost function over a candidate timetable. It returns one
// witness string per violation; the evaluator attaches the configured weight
// to each witness. Rules only ever add witnesses as meetings are added, so
// the cost of a partial timetable is a lower bound on the cost of any of
// its completions.
type ruleFunc func(rc *ruleContext, meetings []model.Meeting) []string

type ruleContext struct {
	resolved   *model.Resolved
	maxSpacing int
}

var ruleRegistry = map[string]ruleFunc{
	"non_morning":         nonMorning,
	"curriculum_conflict": curriculumConflict,
	"parts_of_day":        partsOfDay,
	"friday_afternoon":    fridayAfternoon,
	"teacher_preference":  teacherPreference,
	"max_spacing":         maxSpacing,
	"science_conflict":    scienceConflict,
}

// RuleNames lists the bundled soft constraint rules in lexicographic order.
func RuleNames() []string {
	names := lo.Keys(ruleRegistry)
	slices.Sort(names)
	return names
}

func (rc *ruleContext) label(unit int) string {
	return rc.resolved.Units[unit].Label()
}

// nonMorning penalizes every unfixed meeting held outside the morning.
func nonMorning(rc *ruleContext, meetings []model.Meeting) []string {
	witnesses := []string{}
	for _, meeting := range meetings {
		if !meeting.Fixed && meeting.Slot.Period.PartOfDay() != model.Morning {
			witnesses = append(witnesses, fmt.Sprintf("%v at %v", rc.label(meeting.Unit), meeting.Slot))
		}
	}
	return witnesses
}

// curriculumConflict penalizes every conflict between two units that share
// a curriculum.
func curriculumConflict(rc *ruleContext, meetings []model.Meeting) []string {
	witnesses := []string{}
	for _, conflict := range rc.resolved.Conflicts(meetings) {
		if rc.resolved.ShareCurriculum(conflict.A, conflict.B) {
			witnesses = append(witnesses, fmt.Sprintf("%v and %v at %v", rc.label(conflict.A), rc.label(conflict.B), conflict.Slot))
		}
	}
	return witnesses
}

// partsOfDay penalizes every unit whose own unfixed meetings span more than
// one part of the day.
func partsOfDay(rc *ruleContext, meetings []model.Meeting) []string {
	parts := make(map[int]map[model.PartOfDay]bool)
	for _, meeting := range meetings {
		if meeting.Fixed {
			continue
		}
		if parts[meeting.Unit] == nil {
			parts[meeting.Unit] = make(map[model.PartOfDay]bool)
		}
		parts[meeting.Unit][meeting.Slot.Period.PartOfDay()] = true
	}

	witnesses := []string{}
	for unit := range len(rc.resolved.Units) {
		if len(parts[unit]) > 1 {
			witnesses = append(witnesses, rc.label(unit))
		}
	}
	return witnesses
}

// fridayAfternoon penalizes unfixed undergraduate meetings held on Friday
// outside the morning.
func fridayAfternoon(rc *ruleContext, meetings []model.Meeting) []string {
	witnesses := []string{}
	for _, meeting := range meetings {
		if meeting.Fixed || !rc.resolved.Units[meeting.Unit].IsUndergrad {
			continue
		}
		if meeting.Slot.Weekday == model.Friday && meeting.Slot.Period.PartOfDay() != model.Morning {
			witnesses = append(witnesses, fmt.Sprintf("%v at %v", rc.label(meeting.Unit), meeting.Slot))
		}
	}
	return witnesses
}

// teacherPreference penalizes unfixed meetings scheduled outside the primary
// lecturer's preferred slots. A lecturer with no preferred slots expresses
// no preference and accrues no penalty.
func teacherPreference(rc *ruleContext, meetings []model.Meeting) []string {
	witnesses := []string{}
	for _, meeting := range meetings {
		if meeting.Fixed {
			continue
		}
		teacher := rc.resolved.Teacher(rc.resolved.Units[meeting.Unit].Primary)
		if len(teacher.Preferred) == 0 || slices.Contains(teacher.Preferred, meeting.Slot) {
			continue
		}
		witnesses = append(witnesses, fmt.Sprintf("%v teaches %v at %v", teacher.ID, rc.label(meeting.Unit), meeting.Slot))
	}
	return witnesses
}

// maxSpacing penalizes pairs of meetings of the same unit whose weekdays
// are further apart than the configured threshold.
func maxSpacing(rc *ruleContext, meetings []model.Meeting) []string {
	byUnit := lo.GroupBy(meetings, func(meeting model.Meeting) int { return meeting.Unit })

	witnesses := []string{}
	for unit := range len(rc.resolved.Units) {
		own := byUnit[unit]
		for i := range len(own) - 1 {
			for j := i + 1; j < len(own); j++ {
				gap := int(own[i].Slot.Weekday) - int(own[j].Slot.Weekday)
				if gap < 0 {
					gap = -gap
				}
				if gap > rc.maxSpacing {
					witnesses = append(witnesses, fmt.Sprintf("%v on %v and %v", rc.label(unit), own[i].Slot.Weekday, own[j].Slot.Weekday))
				}
			}
		}
	}
	return witnesses
}

var scienceCurricula = []string{"sciences", "statistics"}

// scienceConflict penalizes conflicts between units belonging to the
// sciences or statistics curricula and required units of ideal semester two
// or later.
func scienceConflict(rc *ruleContext, meetings []model.Meeting) []string {
	inScience := func(unit int) bool {
		for _, member := range rc.resolved.Units[unit].Members {
			for _, component := range rc.resolved.Memberships(member.CourseID) {
				if slices.Contains(scienceCurricula, component.CurriculumID) {
					return true
				}
			}
		}
		return false
	}
	obligatory := func(unit int) bool {
		if rc.resolved.Units[unit].IdealSemester < 2 {
			return false
		}
		for _, member := range rc.resolved.Units[unit].Members {
			for _, component := range rc.resolved.Memberships(member.CourseID) {
				if component.Required {
					return true
				}
			}
		}
		return false
	}

	witnesses := []string{}
	for _, conflict := range rc.resolved.Conflicts(meetings) {
		if (inScience(conflict.A) && obligatory(conflict.B)) || (inScience(conflict.B) && obligatory(conflict.A)) {
			witnesses = append(witnesses, fmt.Sprintf("%v and %v at %v", rc.label(conflict.A), rc.label(conflict.B), conflict.Slot))
		}
	}
	return witnesses
}
