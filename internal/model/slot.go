package model

import "fmt"

// Weekday as represented inside the scheduler (Monday = 0).
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Period as represented inside the scheduler. Periods come in pairs: two
// morning periods, two afternoon periods and two night periods.
type Period uint8

const (
	TotalWeekdays = 5
	TotalPeriods  = 6
	TotalSlots    = TotalWeekdays * TotalPeriods
)

// PartOfDay classifies a period into morning, afternoon or night.
type PartOfDay uint8

const (
	Morning PartOfDay = iota
	Afternoon
	Night
)

// Slot is a (weekday, period) pair, the atomic position of the timetable.
type Slot struct {
	Weekday Weekday
	Period  Period
}

var weekdayNames = [TotalWeekdays]string{"monday", "tuesday", "wednesday", "thursday", "friday"}

var partNames = [3]string{"morning", "afternoon", "night"}

var periodTimes = [TotalPeriods]string{
	"8:00 - 9:40",
	"10:00 - 11:40",
	"14:00 - 15:40",
	"16:00 - 17:40",
	"19:00 - 20:40",
	"21:00 - 22:40",
}

// periodStarts holds the inclusive [start, end] minute-of-day interval of
// each period, used to map clock times from input files into periods.
var periodStarts = [TotalPeriods][2]int{
	{8 * 60, 9*60 + 40},
	{10 * 60, 11*60 + 40},
	{14 * 60, 15*60 + 40},
	{16 * 60, 17*60 + 40},
	{19 * 60, 20*60 + 40},
	{21 * 60, 22*60 + 40},
}

func (w Weekday) String() string {
	if int(w) >= TotalWeekdays {
		return fmt.Sprintf("weekday(%d)", uint8(w))
	}
	return weekdayNames[w]
}

func (p Period) String() string {
	if int(p) >= TotalPeriods {
		return fmt.Sprintf("period(%d)", uint8(p))
	}
	return periodTimes[p]
}

// PartOfDay returns the part of the day the period belongs to.
func (p Period) PartOfDay() PartOfDay {
	return PartOfDay(p / 2)
}

func (p PartOfDay) String() string {
	if int(p) >= len(partNames) {
		return fmt.Sprintf("part(%d)", uint8(p))
	}
	return partNames[p]
}

// PartOfDayByName maps a lowercase part name to its value.
func PartOfDayByName(name string) (PartOfDay, bool) {
	for i, candidate := range partNames {
		if candidate == name {
			return PartOfDay(i), true
		}
	}
	return 0, false
}

// PeriodAt returns the period whose time interval contains the given
// minute-of-day, or false if the time falls between periods.
func PeriodAt(hour, minute int) (Period, bool) {
	moment := hour*60 + minute
	for period, interval := range periodStarts {
		if moment >= interval[0] && moment <= interval[1] {
			return Period(period), true
		}
	}
	return 0, false
}

// Index returns a dense index of the slot in [0, TotalSlots).
func (s Slot) Index() int {
	return int(s.Weekday)*TotalPeriods + int(s.Period)
}

// Valid reports whether the slot's weekday and period are inside the domain.
func (s Slot) Valid() bool {
	return int(s.Weekday) < TotalWeekdays && int(s.Period) < TotalPeriods
}

func (s Slot) String() string {
	return fmt.Sprintf("%v %v", s.Weekday, s.Period)
}

// Compare orders slots by weekday, then period.
func (s Slot) Compare(other Slot) int {
	if s.Weekday != other.Weekday {
		if s.Weekday < other.Weekday {
			return -1
		}
		return 1
	}
	if s.Period != other.Period {
		if s.Period < other.Period {
			return -1
		}
		return 1
	}
	return 0
}

// AllSlots returns every (weekday, period) pair in canonical order.
func AllSlots() []Slot {
	slots := make([]Slot, 0, TotalSlots)
	for weekday := range TotalWeekdays {
		for period := range TotalPeriods {
			slots = append(slots, Slot{Weekday(weekday), Period(period)})
		}
	}
	return slots
}
