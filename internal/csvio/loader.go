// Package csvio loads the scheduler's fact files: courses, workload,
// teacher schedules, curricula and joints.
package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"classscheduler/internal/model"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
)

const (
	CoursesFile   = "courses.csv"
	WorkloadFile  = "workload.csv"
	ScheduleFile  = "schedule.csv"
	CurriculaFile = "curricula.csv"
	JointsFile    = "joints.csv"
)

type courseRecord struct {
	ID            string `csv:"course_id"`
	NumClasses    int    `csv:"num_classes"`
	IsDouble      bool   `csv:"is_double"`
	IsUndergrad   bool   `csv:"is_undergrad"`
	IdealSemester int    `csv:"ideal_semester"`
	ScheduleOn    string `csv:"schedule_on"` // ";"-separated part names, empty means all
}

type workloadRecord struct {
	CourseID string `csv:"course_id"`
	Group    string `csv:"group"`
	Teachers string `csv:"teachers"`      // ";"-separated teacher ids
	Fixed    string `csv:"fixed_classes"` // e.g. "3a 08:00-09:40 5a 10:00"
}

type scheduleRecord struct {
	TeacherID   string `csv:"teacher_id"`
	Unavailable string `csv:"unavailable"` // e.g. "2a 08:00-09:40; 6a 14:00"
	Preferred   string `csv:"preferred"`
}

type curriculumRecord struct {
	CurriculumID string `csv:"curriculum_id"`
	CourseID     string `csv:"course_id"`
	Required     bool   `csv:"required"`
}

type jointRecord struct {
	CourseA string `csv:"course_a"`
	CourseB string `csv:"course_b"`
}

// timeslotPattern captures "<weekday> <start>[-<end>]" entries, weekdays
// written in the institutional convention: 2a = Monday ... 6a = Friday.
var timeslotPattern = regexp.MustCompile(`([2-6])a ([0-2]?[0-9]:[0-5][0-9])(-[0-2]?[0-9]:[0-5][0-9])?`)

// parseTimeslots extracts the slots described by an input string. Only
// period boundaries that intersect a known period are considered; a missing
// end time denotes a single period.
func parseTimeslots(input string) ([]model.Slot, error) {
	slots := []model.Slot{}
	matched := timeslotPattern.FindAllStringSubmatch(input, -1)
	if len(matched) == 0 && strings.TrimSpace(input) != "" {
		return nil, fmt.Errorf("cannot parse timeslots from %q", input)
	}

	for _, groups := range matched {
		day, _ := strconv.Atoi(groups[1])
		weekday := model.Weekday(day - 2)

		periods := []model.Period{}
		if start, ok := parsePeriod(groups[2]); ok {
			periods = append(periods, start)
		}
		if groups[3] != "" {
			if end, ok := parsePeriod(groups[3][1:]); ok {
				periods = append(periods, end)
			}
		}
		if len(periods) == 0 {
			return nil, fmt.Errorf("timeslot %q does not intersect any period", strings.Join(groups[1:], " "))
		}
		for _, period := range periods {
			slots = append(slots, model.Slot{Weekday: weekday, Period: period})
		}
	}

	return lo.Uniq(slots), nil
}

func parsePeriod(clock string) (model.Period, bool) {
	parts := strings.SplitN(clock, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	return model.PeriodAt(hour, minute)
}

func unmarshalFile[T any](dir, name string) ([]T, error) {
	file, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records := []T{}
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", name, err)
	}
	return records, nil
}

func splitList(input string) []string {
	return lo.FilterMap(strings.Split(input, ";"), func(entry string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(entry)
		return trimmed, trimmed != ""
	})
}

// LoadFacts reads the fact files from a directory and returns the validated
// fact store. The joints file is optional.
func LoadFacts(dir string) (*model.Facts, error) {
	facts := &model.Facts{}

	courses, err := unmarshalFile[courseRecord](dir, CoursesFile)
	if err != nil {
		return nil, err
	}
	for _, record := range courses {
		parts := []model.PartOfDay{}
		for _, name := range splitList(record.ScheduleOn) {
			part, ok := model.PartOfDayByName(name)
			if !ok {
				return nil, fmt.Errorf("course %v allows unknown part of day %q", record.ID, name)
			}
			parts = append(parts, part)
		}
		facts.Courses = append(facts.Courses, model.Course{
			ID:            record.ID,
			NumClasses:    record.NumClasses,
			IsDouble:      record.IsDouble,
			IsUndergrad:   record.IsUndergrad,
			IdealSemester: record.IdealSemester,
			ScheduleOn:    parts,
		})
	}

	schedules, err := unmarshalFile[scheduleRecord](dir, ScheduleFile)
	if err != nil {
		return nil, err
	}
	for _, record := range schedules {
		unavailable, err := parseTimeslots(record.Unavailable)
		if err != nil {
			return nil, fmt.Errorf("teacher %v: %w", record.TeacherID, err)
		}
		preferred, err := parseTimeslots(record.Preferred)
		if err != nil {
			return nil, fmt.Errorf("teacher %v: %w", record.TeacherID, err)
		}

		available := lo.Filter(model.AllSlots(), func(slot model.Slot, _ int) bool {
			return !lo.Contains(unavailable, slot)
		})
		facts.Teachers = append(facts.Teachers, model.Teacher{
			ID:        record.TeacherID,
			Available: available,
			Preferred: preferred,
		})
	}

	workloads, err := unmarshalFile[workloadRecord](dir, WorkloadFile)
	if err != nil {
		return nil, err
	}
	for _, record := range workloads {
		fixed, err := parseTimeslots(record.Fixed)
		if err != nil {
			return nil, fmt.Errorf("workload %v/%v: %w", record.CourseID, record.Group, err)
		}
		facts.Workloads = append(facts.Workloads, model.Workload{
			CourseID: record.CourseID,
			Group:    record.Group,
			Teachers: splitList(record.Teachers),
			Fixed:    fixed,
		})
	}

	curricula, err := unmarshalFile[curriculumRecord](dir, CurriculaFile)
	if err != nil {
		return nil, err
	}
	for _, record := range curricula {
		facts.Curricula = append(facts.Curricula, model.CurriculumComponent{
			CurriculumID: record.CurriculumID,
			CourseID:     record.CourseID,
			Required:     record.Required,
		})
	}

	if _, err := os.Stat(filepath.Join(dir, JointsFile)); err == nil {
		joints, err := unmarshalFile[jointRecord](dir, JointsFile)
		if err != nil {
			return nil, err
		}
		for _, record := range joints {
			facts.Joints = append(facts.Joints, model.Joint{CourseA: record.CourseA, CourseB: record.CourseB})
		}
	}

	if err := facts.Validate(); err != nil {
		return nil, err
	}
	return facts, nil
}
