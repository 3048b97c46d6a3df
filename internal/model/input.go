package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type slotDocument struct {
	Weekday int `mapstructure:"weekday"`
	Period  int `mapstructure:"period"`
}

type factsDocument struct {
	Courses []struct {
		ID            string   `mapstructure:"id"`
		NumClasses    int      `mapstructure:"num_classes"`
		IsDouble      bool     `mapstructure:"is_double"`
		IsUndergrad   bool     `mapstructure:"is_undergrad"`
		IdealSemester int      `mapstructure:"ideal_semester"`
		ScheduleOn    []string `mapstructure:"schedule_on"`
	} `mapstructure:"courses"`
	Teachers []struct {
		ID        string         `mapstructure:"id"`
		Available []slotDocument `mapstructure:"available"`
		Preferred []slotDocument `mapstructure:"preferred"`
	} `mapstructure:"teachers"`
	Workloads []struct {
		CourseID string         `mapstructure:"course_id"`
		Group    string         `mapstructure:"group"`
		Teachers []string       `mapstructure:"teachers"`
		Fixed    []slotDocument `mapstructure:"fixed"`
	} `mapstructure:"workloads"`
	Curricula []struct {
		CurriculumID string `mapstructure:"curriculum_id"`
		CourseID     string `mapstructure:"course_id"`
		Required     bool   `mapstructure:"required"`
	} `mapstructure:"curricula"`
	Joints []struct {
		CourseA string `mapstructure:"course_a"`
		CourseB string `mapstructure:"course_b"`
	} `mapstructure:"joints"`
}

// FactsFromJSON reads and validates a fact document from a JSON file.
func FactsFromJSON(file string) (*Facts, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var documentJSON map[string]any
	if err := json.Unmarshal(bytes, &documentJSON); err != nil {
		return nil, err
	}

	var document factsDocument
	if err := mapstructure.Decode(documentJSON, &document); err != nil {
		return nil, err
	}

	facts, err := document.intoFacts()
	if err != nil {
		return nil, err
	}
	if err := facts.Validate(); err != nil {
		return nil, err
	}
	return facts, nil
}

func (document factsDocument) intoFacts() (*Facts, error) {
	facts := &Facts{}

	for _, course := range document.Courses {
		parts := make([]PartOfDay, 0, len(course.ScheduleOn))
		for _, name := range course.ScheduleOn {
			part, ok := PartOfDayByName(name)
			if !ok {
				return nil, fmt.Errorf("%w: course %q allows unknown part of day %q", ErrDataIntegrity, course.ID, name)
			}
			parts = append(parts, part)
		}
		facts.Courses = append(facts.Courses, Course{
			ID:            course.ID,
			NumClasses:    course.NumClasses,
			IsDouble:      course.IsDouble,
			IsUndergrad:   course.IsUndergrad,
			IdealSemester: course.IdealSemester,
			ScheduleOn:    parts,
		})
	}

	intoSlots := func(documents []slotDocument) []Slot {
		return lo.Map(documents, func(document slotDocument, _ int) Slot {
			return Slot{Weekday(document.Weekday), Period(document.Period)}
		})
	}

	for _, teacher := range document.Teachers {
		facts.Teachers = append(facts.Teachers, Teacher{
			ID:        teacher.ID,
			Available: intoSlots(teacher.Available),
			Preferred: intoSlots(teacher.Preferred),
		})
	}

	for _, workload := range document.Workloads {
		facts.Workloads = append(facts.Workloads, Workload{
			CourseID: workload.CourseID,
			Group:    workload.Group,
			Teachers: workload.Teachers,
			Fixed:    intoSlots(workload.Fixed),
		})
	}

	for _, component := range document.Curricula {
		facts.Curricula = append(facts.Curricula, CurriculumComponent{
			CurriculumID: component.CurriculumID,
			CourseID:     component.CourseID,
			Required:     component.Required,
		})
	}

	for _, joint := range document.Joints {
		facts.Joints = append(facts.Joints, Joint{CourseA: joint.CourseA, CourseB: joint.CourseB})
	}

	return facts, nil
}
