package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// UnitMember is one (course, offering-group) pair scheduled by a unit.
type UnitMember struct {
	CourseID string
	Group    string
}

func (member UnitMember) compare(other UnitMember) int {
	if comparison := strings.Compare(member.CourseID, other.CourseID); comparison != 0 {
		return comparison
	}
	return strings.Compare(member.Group, other.Group)
}

// Unit is the schedulable entity: a (course, offering-group) pair merged
// with its joint partners. A merged unit carries the union of its members'
// hard constraints.
type Unit struct {
	Members       []UnitMember // sorted; Members[0] is the canonical member
	NumClasses    int
	IsDouble      bool
	IsUndergrad   bool
	IdealSemester int
	Teachers      []string // sorted union of the members' lecturers
	Primary       string   // primary lecturer (minimal availability, smallest id on ties)
	Fixed         []Slot   // pinned meetings, sorted
	Domain        []Slot   // legal slots for unfixed meetings, sorted
}

// Unfixed returns the number of meetings the search must place for the unit.
func (unit *Unit) Unfixed() int {
	return unit.NumClasses - len(unit.Fixed)
}

// Label renders the unit's members, e.g. "MAC0110/45+MAC5770/45".
func (unit *Unit) Label() string {
	members := lo.Map(unit.Members, func(member UnitMember, _ int) string {
		return member.CourseID + "/" + member.Group
	})
	return strings.Join(members, "+")
}

// Meeting is the atomic scheduled entry of a candidate timetable: one unit
// occupying one slot.
type Meeting struct {
	Unit  int // index into Resolved.Units
	Slot  Slot
	Fixed bool
}

// CompareMeetings orders meetings by unit, then slot. Units are themselves
// canonically ordered, so this ordering is the serialization used to break
// exact cost ties deterministically.
func CompareMeetings(a, b Meeting) int {
	if a.Unit != b.Unit {
		if a.Unit < b.Unit {
			return -1
		}
		return 1
	}
	return a.Slot.Compare(b.Slot)
}

// Conflict is a pair of meetings of two distinct units sharing a slot.
// A < B under the canonical unit ordering, so each conflict is reported
// exactly once.
type Conflict struct {
	A    int
	B    int
	Slot Slot
}

// Resolved holds the derived structures consumed by the search: merged
// units, the teacher-sharing relation and curriculum lookups. It is
// immutable during search and safe to share across workers.
type Resolved struct {
	Facts *Facts
	Units []*Unit

	// SharedTeacher[i][j] reports whether units i and j have a lecturer in
	// common. Symmetric, false on the diagonal.
	SharedTeacher [][]bool

	teachersByID      map[string]Teacher
	curriculaByCourse map[string][]CurriculumComponent
}

// Teacher returns the teacher with the given id. The id is known to exist
// once Resolve succeeded.
func (resolved *Resolved) Teacher(id string) Teacher {
	return resolved.teachersByID[id]
}

// Memberships returns the curriculum components of the given course.
func (resolved *Resolved) Memberships(courseID string) []CurriculumComponent {
	return resolved.curriculaByCourse[courseID]
}

// ShareCurriculum reports whether some member course of unit a and some
// member course of unit b belong to the same curriculum.
func (resolved *Resolved) ShareCurriculum(a, b int) bool {
	for _, memberA := range resolved.Units[a].Members {
		for _, componentA := range resolved.Memberships(memberA.CourseID) {
			for _, memberB := range resolved.Units[b].Members {
				for _, componentB := range resolved.Memberships(memberB.CourseID) {
					if componentA.CurriculumID == componentB.CurriculumID {
						return true
					}
				}
			}
		}
	}
	return false
}

// Conflicts derives the canonical conflict relation of a candidate
// timetable: every pair of meetings of distinct units sharing a slot,
// smaller unit first.
func (resolved *Resolved) Conflicts(meetings []Meeting) []Conflict {
	bySlot := make(map[Slot][]int)
	for _, meeting := range meetings {
		bySlot[meeting.Slot] = append(bySlot[meeting.Slot], meeting.Unit)
	}

	conflicts := []Conflict{}
	for slot, units := range bySlot {
		slices.Sort(units)
		for i := range len(units) - 1 {
			for j := i + 1; j < len(units); j++ {
				if units[i] != units[j] {
					conflicts = append(conflicts, Conflict{A: units[i], B: units[j], Slot: slot})
				}
			}
		}
	}

	slices.SortFunc(conflicts, func(a, b Conflict) int {
		if a.A != b.A {
			return a.A - b.A
		}
		if a.B != b.B {
			return a.B - b.B
		}
		return a.Slot.Compare(b.Slot)
	})
	return conflicts
}

// Resolver builds the derived scheduling structures from a fact store:
// the transitive closure of the joint relation, the merged units and the
// teacher-sharing relation.
type Resolver interface {
	Resolve(facts *Facts) (*Resolved, error)
}

func NewResolver() Resolver {
	return &resolverImplementation{}
}

type resolverImplementation struct{}

func (resolver *resolverImplementation) Resolve(facts *Facts) (*Resolved, error) {
	if err := facts.Validate(); err != nil {
		return nil, err
	}

	//** Base units, one per workload, canonically sorted
	workloads := slices.Clone(facts.Workloads)
	slices.SortFunc(workloads, func(a, b Workload) int {
		return UnitMember{a.CourseID, a.Group}.compare(UnitMember{b.CourseID, b.Group})
	})

	unitIndex := make(map[UnitMember]int, len(workloads))
	groupsByCourse := make(map[string][]string)
	for i, workload := range workloads {
		unitIndex[UnitMember{workload.CourseID, workload.Group}] = i
		groupsByCourse[workload.CourseID] = append(groupsByCourse[workload.CourseID], workload.Group)
	}

	//** Transitive closure of the joint relation via union-find
	parent := make([]int, len(workloads))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		rootI, rootJ := find(i), find(j)
		if rootI != rootJ {
			parent[rootJ] = rootI
		}
	}

	for _, joint := range facts.Joints {
		groupsA := slices.Clone(groupsByCourse[joint.CourseA])
		groupsB := slices.Clone(groupsByCourse[joint.CourseB])
		slices.Sort(groupsA)
		slices.Sort(groupsB)
		if len(groupsA) == 0 || len(groupsB) == 0 || !slices.Equal(groupsA, groupsB) {
			return nil, fmt.Errorf("%w: jointed courses %q and %q must offer the same groups", ErrDataIntegrity, joint.CourseA, joint.CourseB)
		}
		for _, group := range groupsA {
			union(unitIndex[UnitMember{joint.CourseA, group}], unitIndex[UnitMember{joint.CourseB, group}])
		}
	}

	//** Merge joint components into units
	componentMembers := make(map[int][]int)
	for i := range workloads {
		root := find(i)
		componentMembers[root] = append(componentMembers[root], i)
	}

	teachersByID := lo.SliceToMap(facts.Teachers, func(teacher Teacher) (string, Teacher) {
		return teacher.ID, teacher
	})

	units := make([]*Unit, 0, len(componentMembers))
	for _, memberIndices := range componentMembers {
		unit, err := mergeUnit(facts, teachersByID, lo.Map(memberIndices, func(i int, _ int) Workload {
			return workloads[i]
		}))
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	slices.SortFunc(units, func(a, b *Unit) int {
		return a.Members[0].compare(b.Members[0])
	})

	//** Teacher-sharing relation
	shared := make([][]bool, len(units))
	for i := range shared {
		shared[i] = make([]bool, len(units))
	}
	for i := range len(units) - 1 {
		for j := i + 1; j < len(units); j++ {
			if lo.Some(units[i].Teachers, units[j].Teachers) {
				shared[i][j] = true
				shared[j][i] = true
			}
		}
	}

	curriculaByCourse := lo.GroupBy(facts.Curricula, func(component CurriculumComponent) string {
		return component.CourseID
	})

	return &Resolved{
		Facts:             facts,
		Units:             units,
		SharedTeacher:     shared,
		teachersByID:      teachersByID,
		curriculaByCourse: curriculaByCourse,
	}, nil
}

func mergeUnit(facts *Facts, teachersByID map[string]Teacher, workloads []Workload) (*Unit, error) {
	unit := &Unit{}

	allowedParts := map[PartOfDay]bool{Morning: true, Afternoon: true, Night: true}
	for _, workload := range workloads {
		course, _ := facts.CourseByID(workload.CourseID)

		unit.Members = append(unit.Members, UnitMember{workload.CourseID, workload.Group})
		unit.NumClasses = course.NumClasses
		unit.IsDouble = course.IsDouble
		unit.IsUndergrad = unit.IsUndergrad || course.IsUndergrad
		unit.IdealSemester = max(unit.IdealSemester, course.IdealSemester)
		unit.Teachers = append(unit.Teachers, workload.Teachers...)
		unit.Fixed = append(unit.Fixed, workload.Fixed...)

		if len(course.ScheduleOn) > 0 {
			for part := range allowedParts {
				allowedParts[part] = allowedParts[part] && slices.Contains(course.ScheduleOn, part)
			}
		}
	}

	slices.SortFunc(unit.Members, UnitMember.compare)
	unit.Teachers = lo.Uniq(unit.Teachers)
	slices.Sort(unit.Teachers)
	unit.Fixed = lo.Uniq(unit.Fixed)
	slices.SortFunc(unit.Fixed, Slot.Compare)

	if len(unit.Fixed) > unit.NumClasses {
		return nil, fmt.Errorf("%w: jointed unit %v fixes more meetings than its number of classes", ErrDataIntegrity, unit.Label())
	}

	//** Primary lecturer: minimal availability, lexicographically smallest id on ties
	unit.Primary = unit.Teachers[0]
	for _, id := range unit.Teachers[1:] {
		primary, candidate := teachersByID[unit.Primary], teachersByID[id]
		if len(candidate.Available) < len(primary.Available) {
			unit.Primary = id
		}
	}

	//** Legal slots for unfixed meetings: available to some lecturer, inside
	//** the allowed parts of day and not already pinned
	available := make(map[Slot]bool)
	for _, id := range unit.Teachers {
		for _, slot := range teachersByID[id].Available {
			available[slot] = true
		}
	}
	for _, slot := range AllSlots() {
		if available[slot] && allowedParts[slot.Period.PartOfDay()] && !slices.Contains(unit.Fixed, slot) {
			unit.Domain = append(unit.Domain, slot)
		}
	}

	return unit, nil
}
