package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ErrDataIntegrity marks inconsistencies in the input facts, such as a
// workload naming an unknown course or teacher. It is always surfaced
// before search starts.
var ErrDataIntegrity = errors.New("inconsistent input data")

// Course holds general information about a course offered by the institution.
type Course struct {
	ID            string
	NumClasses    int
	IsDouble      bool
	IsUndergrad   bool
	IdealSemester int         // 0 means none
	ScheduleOn    []PartOfDay // allowed parts of day; empty means all
}

// Teacher holds the availability and time preferences of a teacher.
// Preferred must be a subset of Available.
type Teacher struct {
	ID        string
	Available []Slot
	Preferred []Slot
}

// Workload assigns one or more teachers to a (course, offering-group) unit
// and pins its fixed meetings, if any.
type Workload struct {
	CourseID string
	Group    string
	Teachers []string
	Fixed    []Slot
}

// CurriculumComponent states that a course belongs to a curriculum,
// optionally as a required component.
type CurriculumComponent struct {
	CurriculumID string
	CourseID     string
	Required     bool
}

// Joint states that two courses must be scheduled together: for every
// offering group the two courses share, their meetings occupy identical
// slots. The relation is symmetric.
type Joint struct {
	CourseA string
	CourseB string
}

// Facts is the normalized, read-only fact store built once from validated
// external input. The search never mutates it.
type Facts struct {
	Courses   []Course
	Teachers  []Teacher
	Workloads []Workload
	Curricula []CurriculumComponent
	Joints    []Joint
}

// CourseByID returns the course with the given id.
func (facts *Facts) CourseByID(id string) (Course, bool) {
	course, ok := lo.Find(facts.Courses, func(course Course) bool { return course.ID == id })
	return course, ok
}

// TeacherByID returns the teacher with the given id.
func (facts *Facts) TeacherByID(id string) (Teacher, bool) {
	teacher, ok := lo.Find(facts.Teachers, func(teacher Teacher) bool { return teacher.ID == id })
	return teacher, ok
}

// Validate checks referential integrity and per-fact invariants. All
// violations are reported at once, wrapped in ErrDataIntegrity.
func (facts *Facts) Validate() error {
	var problems []string

	courses := make(map[string]Course, len(facts.Courses))
	for _, course := range facts.Courses {
		if _, duplicated := courses[course.ID]; duplicated {
			problems = append(problems, fmt.Sprintf("duplicated course %q", course.ID))
		}
		if course.NumClasses <= 0 {
			problems = append(problems, fmt.Sprintf("course %q must have a positive number of classes", course.ID))
		}
		courses[course.ID] = course
	}

	teachers := make(map[string]Teacher, len(facts.Teachers))
	for _, teacher := range facts.Teachers {
		if _, duplicated := teachers[teacher.ID]; duplicated {
			problems = append(problems, fmt.Sprintf("duplicated teacher %q", teacher.ID))
		}
		teachers[teacher.ID] = teacher

		for _, slot := range slices.Concat(teacher.Available, teacher.Preferred) {
			if !slot.Valid() {
				problems = append(problems, fmt.Sprintf("teacher %q references slot %v outside the domain", teacher.ID, slot))
			}
		}
		for _, slot := range teacher.Preferred {
			if !slices.Contains(teacher.Available, slot) {
				problems = append(problems, fmt.Sprintf("teacher %q prefers slot %v but is not available then", teacher.ID, slot))
			}
		}
	}

	units := make(map[[2]string]bool, len(facts.Workloads))
	for _, workload := range facts.Workloads {
		key := [2]string{workload.CourseID, workload.Group}
		if units[key] {
			problems = append(problems, fmt.Sprintf("duplicated workload for %v/%v", workload.CourseID, workload.Group))
		}
		units[key] = true

		course, known := courses[workload.CourseID]
		if !known {
			problems = append(problems, fmt.Sprintf("workload %v/%v references unknown course", workload.CourseID, workload.Group))
		}
		if len(workload.Teachers) == 0 {
			problems = append(problems, fmt.Sprintf("workload %v/%v has no lecturer", workload.CourseID, workload.Group))
		}
		for _, teacher := range workload.Teachers {
			if _, ok := teachers[teacher]; !ok {
				problems = append(problems, fmt.Sprintf("workload %v/%v references unknown teacher %q", workload.CourseID, workload.Group, teacher))
			}
		}
		for _, slot := range workload.Fixed {
			if !slot.Valid() {
				problems = append(problems, fmt.Sprintf("workload %v/%v fixes slot %v outside the domain", workload.CourseID, workload.Group, slot))
			}
		}

		if known {
			unfixed := course.NumClasses - len(workload.Fixed)
			if unfixed < 0 {
				problems = append(problems, fmt.Sprintf("workload %v/%v fixes more meetings than the course's number of classes", workload.CourseID, workload.Group))
			}
			// The adjacent-pair shape of double courses is only defined for
			// exactly two unfixed meetings.
			if course.IsDouble && unfixed != 0 && unfixed != 2 {
				problems = append(problems, fmt.Sprintf("double course workload %v/%v must leave exactly zero or two meetings unfixed", workload.CourseID, workload.Group))
			}
		}
	}

	for _, joint := range facts.Joints {
		if joint.CourseA == joint.CourseB {
			problems = append(problems, fmt.Sprintf("course %q is jointed with itself", joint.CourseA))
			continue
		}
		courseA, okA := courses[joint.CourseA]
		courseB, okB := courses[joint.CourseB]
		if !okA {
			problems = append(problems, fmt.Sprintf("joint references unknown course %q", joint.CourseA))
		}
		if !okB {
			problems = append(problems, fmt.Sprintf("joint references unknown course %q", joint.CourseB))
		}
		if okA && okB {
			if courseA.NumClasses != courseB.NumClasses {
				problems = append(problems, fmt.Sprintf("jointed courses %q and %q disagree on the number of classes", joint.CourseA, joint.CourseB))
			}
			if courseA.IsDouble != courseB.IsDouble {
				problems = append(problems, fmt.Sprintf("jointed courses %q and %q disagree on being double", joint.CourseA, joint.CourseB))
			}
		}
	}

	for _, component := range facts.Curricula {
		if _, ok := courses[component.CourseID]; !ok {
			problems = append(problems, fmt.Sprintf("curriculum %q references unknown course %q", component.CurriculumID, component.CourseID))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n * %v", ErrDataIntegrity, joinProblems(problems))
}

func joinProblems(problems []string) string {
	joined := problems[0]
	for _, problem := range problems[1:] {
		joined += "\n * " + problem
	}
	return joined
}
