package model

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUnits(t *testing.T) {
	resolver := NewResolver()

	t.Run("One unit per workload without joints", func(t *testing.T) {
		//**Arrange
		facts := validFacts()

		//**Act
		resolved, err := resolver.Resolve(facts)

		//**Assert
		assert.NoError(t, err)
		assert.Len(t, resolved.Units, 2)
		assert.Equal(t, []UnitMember{{"MAC0110", "45"}}, resolved.Units[0].Members)
		assert.Equal(t, []UnitMember{{"MAC0323", "45"}}, resolved.Units[1].Members)
		assert.Equal(t, "MAC0110/45", resolved.Units[0].Label())
	})

	t.Run("Invalid facts are rejected", func(t *testing.T) {
		facts := validFacts()
		facts.Courses[0].NumClasses = 0

		_, err := resolver.Resolve(facts)

		assert.ErrorIs(t, err, ErrDataIntegrity)
	})

	t.Run("Domain excludes disallowed parts and fixed slots", func(t *testing.T) {
		//**Arrange
		facts := validFacts()
		facts.Courses[0].ScheduleOn = []PartOfDay{Morning}
		facts.Workloads[0].Fixed = []Slot{{Weekday: Monday, Period: 0}}

		//**Act
		resolved, err := resolver.Resolve(facts)

		//**Assert
		assert.NoError(t, err)
		unit := resolved.Units[0]
		assert.Equal(t, 1, unit.Unfixed())
		assert.NotContains(t, unit.Domain, Slot{Weekday: Monday, Period: 0})
		for _, slot := range unit.Domain {
			assert.Equal(t, Morning, slot.Period.PartOfDay())
		}
		// Alice is available everywhere: 10 morning slots minus the fixed one.
		assert.Len(t, unit.Domain, 9)
	})

	t.Run("Domain is the union of the lecturers' availability", func(t *testing.T) {
		//**Arrange: bob is morning-only, alice is available everywhere
		facts := validFacts()
		facts.Workloads[1].Teachers = []string{"bob", "alice"}

		//**Act
		resolved, err := resolver.Resolve(facts)

		//**Assert
		assert.NoError(t, err)
		assert.Len(t, resolved.Units[1].Domain, TotalSlots)
	})

	t.Run("Primary lecturer has minimal availability", func(t *testing.T) {
		facts := validFacts()
		facts.Workloads[0].Teachers = []string{"alice", "bob"}

		resolved, err := resolver.Resolve(facts)

		assert.NoError(t, err)
		assert.Equal(t, "bob", resolved.Units[0].Primary)
	})

	t.Run("Primary lecturer ties break towards the smallest id", func(t *testing.T) {
		//**Arrange: carol and bob have equally sized availabilities
		facts := validFacts()
		facts.Teachers = append(facts.Teachers, Teacher{ID: "carol", Available: morningSlots()})
		facts.Workloads[0].Teachers = []string{"carol", "bob"}

		//**Act
		resolved, err := resolver.Resolve(facts)

		//**Assert
		assert.NoError(t, err)
		assert.Equal(t, "bob", resolved.Units[0].Primary)
	})

	t.Run("Teacher sharing relation is symmetric", func(t *testing.T) {
		facts := validFacts()
		facts.Workloads[1].Teachers = []string{"alice"}

		resolved, err := resolver.Resolve(facts)

		assert.NoError(t, err)
		assert.False(t, resolved.SharedTeacher[0][0])
		assert.True(t, resolved.SharedTeacher[0][1])
		assert.True(t, resolved.SharedTeacher[1][0])
	})
}

func TestResolveJoints(t *testing.T) {
	resolver := NewResolver()

	jointFacts := func() *Facts {
		facts := validFacts()
		facts.Courses = append(facts.Courses, Course{ID: "MAC5770", NumClasses: 2, IdealSemester: 5})
		facts.Workloads = append(facts.Workloads, Workload{CourseID: "MAC5770", Group: "45", Teachers: []string{"bob"}})
		facts.Joints = []Joint{{CourseA: "MAC0110", CourseB: "MAC5770"}}
		return facts
	}

	t.Run("Jointed courses merge into one unit", func(t *testing.T) {
		//**Act
		resolved, err := resolver.Resolve(jointFacts())

		//**Assert
		assert.NoError(t, err)
		assert.Len(t, resolved.Units, 2)

		merged := resolved.Units[0]
		assert.Equal(t, []UnitMember{{"MAC0110", "45"}, {"MAC5770", "45"}}, merged.Members)
		assert.Equal(t, "MAC0110/45+MAC5770/45", merged.Label())
		assert.Equal(t, []string{"alice", "bob"}, merged.Teachers)
		assert.True(t, merged.IsUndergrad)
		assert.Equal(t, 5, merged.IdealSemester)
		// Bob has the smaller availability among the merged lecturers.
		assert.Equal(t, "bob", merged.Primary)
	})

	t.Run("Joint closure is transitive", func(t *testing.T) {
		//**Arrange
		facts := jointFacts()
		facts.Courses = append(facts.Courses, Course{ID: "MAE0399", NumClasses: 2})
		facts.Workloads = append(facts.Workloads, Workload{CourseID: "MAE0399", Group: "45", Teachers: []string{"alice"}})
		facts.Joints = append(facts.Joints, Joint{CourseA: "MAC5770", CourseB: "MAE0399"})

		//**Act
		resolved, err := resolver.Resolve(facts)

		//**Assert
		assert.NoError(t, err)
		assert.Len(t, resolved.Units, 2)
		assert.Len(t, resolved.Units[0].Members, 3)
	})

	t.Run("Jointed courses must offer the same groups", func(t *testing.T) {
		facts := jointFacts()
		facts.Workloads[2].Group = "54"

		_, err := resolver.Resolve(facts)

		assert.ErrorIs(t, err, ErrDataIntegrity)
	})
}

func TestConflicts(t *testing.T) {
	//**Arrange
	resolved, err := NewResolver().Resolve(validFacts())
	assert.NoError(t, err)

	slot := Slot{Weekday: Monday, Period: 0}
	other := Slot{Weekday: Tuesday, Period: 2}
	meetings := []Meeting{
		{Unit: 1, Slot: slot},
		{Unit: 0, Slot: slot},
		{Unit: 0, Slot: other},
		{Unit: 1, Slot: other},
	}

	//**Act
	conflicts := resolved.Conflicts(meetings)

	//**Assert: one conflict per shared slot, smaller unit first, sorted
	assert.Equal(t, []Conflict{
		{A: 0, B: 1, Slot: slot},
		{A: 0, B: 1, Slot: other},
	}, conflicts)

	assert.Empty(t, resolved.Conflicts([]Meeting{
		{Unit: 0, Slot: slot},
		{Unit: 1, Slot: other},
	}))
}

func TestShareCurriculum(t *testing.T) {
	facts := validFacts()
	facts.Courses = append(facts.Courses, Course{ID: "MAE0399", NumClasses: 1})
	facts.Workloads = append(facts.Workloads, Workload{CourseID: "MAE0399", Group: "45", Teachers: []string{"bob"}})

	resolved, err := NewResolver().Resolve(facts)
	assert.NoError(t, err)

	assert.True(t, resolved.ShareCurriculum(0, 1))
	assert.False(t, resolved.ShareCurriculum(0, 2))
	assert.Empty(t, resolved.Memberships("MAE0399"))
}

func TestCompareMeetings(t *testing.T) {
	meetings := []Meeting{
		{Unit: 1, Slot: Slot{Weekday: Monday, Period: 0}},
		{Unit: 0, Slot: Slot{Weekday: Friday, Period: 5}},
		{Unit: 0, Slot: Slot{Weekday: Monday, Period: 1}},
	}

	slices.SortFunc(meetings, CompareMeetings)

	assert.Equal(t, []Meeting{
		{Unit: 0, Slot: Slot{Weekday: Monday, Period: 1}},
		{Unit: 0, Slot: Slot{Weekday: Friday, Period: 5}},
		{Unit: 1, Slot: Slot{Weekday: Monday, Period: 0}},
	}, meetings)
}
