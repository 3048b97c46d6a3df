package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func morningSlots() []Slot {
	slots := []Slot{}
	for weekday := range TotalWeekdays {
		slots = append(slots, Slot{Weekday(weekday), 0}, Slot{Weekday(weekday), 1})
	}
	return slots
}

func validFacts() *Facts {
	return &Facts{
		Courses: []Course{
			{ID: "MAC0110", NumClasses: 2, IsUndergrad: true, IdealSemester: 1},
			{ID: "MAC0323", NumClasses: 2, IsUndergrad: true, IdealSemester: 3},
		},
		Teachers: []Teacher{
			{ID: "alice", Available: AllSlots(), Preferred: morningSlots()},
			{ID: "bob", Available: morningSlots()},
		},
		Workloads: []Workload{
			{CourseID: "MAC0110", Group: "45", Teachers: []string{"alice"}},
			{CourseID: "MAC0323", Group: "45", Teachers: []string{"bob"}},
		},
		Curricula: []CurriculumComponent{
			{CurriculumID: "cs", CourseID: "MAC0110", Required: true},
			{CurriculumID: "cs", CourseID: "MAC0323", Required: true},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("Correct flow", func(t *testing.T) {
		assert.NoError(t, validFacts().Validate())
	})

	t.Run("Invalid facts", func(t *testing.T) {
		mutations := map[string]func(facts *Facts){
			"duplicated course": func(facts *Facts) {
				facts.Courses = append(facts.Courses, Course{ID: "MAC0110", NumClasses: 1})
			},
			"non-positive number of classes": func(facts *Facts) {
				facts.Courses[0].NumClasses = 0
			},
			"duplicated teacher": func(facts *Facts) {
				facts.Teachers = append(facts.Teachers, Teacher{ID: "alice"})
			},
			"teacher slot outside the domain": func(facts *Facts) {
				facts.Teachers[0].Available = append(facts.Teachers[0].Available, Slot{Weekday: 9, Period: 0})
			},
			"preferred but unavailable slot": func(facts *Facts) {
				facts.Teachers[1].Preferred = []Slot{{Weekday: 0, Period: 3}}
			},
			"duplicated workload": func(facts *Facts) {
				facts.Workloads = append(facts.Workloads, facts.Workloads[0])
			},
			"workload with unknown course": func(facts *Facts) {
				facts.Workloads[0].CourseID = "MAC9999"
			},
			"workload without lecturers": func(facts *Facts) {
				facts.Workloads[0].Teachers = nil
			},
			"workload with unknown teacher": func(facts *Facts) {
				facts.Workloads[0].Teachers = []string{"carol"}
			},
			"fixed slot outside the domain": func(facts *Facts) {
				facts.Workloads[0].Fixed = []Slot{{Weekday: 0, Period: 7}}
			},
			"more fixed meetings than classes": func(facts *Facts) {
				facts.Workloads[0].Fixed = []Slot{
					{Weekday: 0, Period: 0}, {Weekday: 1, Period: 0}, {Weekday: 2, Period: 0},
				}
			},
			"double course with one unfixed meeting": func(facts *Facts) {
				facts.Courses[0].IsDouble = true
				facts.Workloads[0].Fixed = []Slot{{Weekday: 0, Period: 0}}
			},
			"course jointed with itself": func(facts *Facts) {
				facts.Joints = []Joint{{CourseA: "MAC0110", CourseB: "MAC0110"}}
			},
			"joint with unknown course": func(facts *Facts) {
				facts.Joints = []Joint{{CourseA: "MAC0110", CourseB: "MAC9999"}}
			},
			"jointed courses with different number of classes": func(facts *Facts) {
				facts.Courses[1].NumClasses = 3
				facts.Joints = []Joint{{CourseA: "MAC0110", CourseB: "MAC0323"}}
			},
			"jointed courses disagreeing on being double": func(facts *Facts) {
				facts.Courses[1].IsDouble = true
				facts.Joints = []Joint{{CourseA: "MAC0110", CourseB: "MAC0323"}}
			},
			"curriculum with unknown course": func(facts *Facts) {
				facts.Curricula[0].CourseID = "MAC9999"
			},
		}

		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				//**Arrange
				facts := validFacts()
				mutate(facts)

				//**Act
				err := facts.Validate()

				//**Assert
				assert.ErrorIs(t, err, ErrDataIntegrity)
			})
		}
	})

	t.Run("All problems reported at once", func(t *testing.T) {
		//**Arrange
		facts := validFacts()
		facts.Courses[0].NumClasses = -1
		facts.Workloads[1].Teachers = []string{"carol"}

		//**Act
		err := facts.Validate()

		//**Assert
		assert.ErrorIs(t, err, ErrDataIntegrity)
		assert.Contains(t, err.Error(), "MAC0110")
		assert.Contains(t, err.Error(), "carol")
	})
}

func TestLookups(t *testing.T) {
	facts := validFacts()

	course, ok := facts.CourseByID("MAC0323")
	assert.True(t, ok)
	assert.Equal(t, 3, course.IdealSemester)

	_, ok = facts.CourseByID("MAC9999")
	assert.False(t, ok)

	teacher, ok := facts.TeacherByID("bob")
	assert.True(t, ok)
	assert.Len(t, teacher.Available, 10)

	_, ok = facts.TeacherByID("carol")
	assert.False(t, ok)
}
