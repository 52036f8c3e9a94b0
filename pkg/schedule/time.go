package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Weekday is one of the seven calendar days, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists every day in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Bit returns the day's flag in a dayofweek mask, Monday being bit 0.
func (d Weekday) Bit() int {
	return 1 << uint(d)
}

// ParseWeekday accepts an English day name in any case.
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", s)
}

// TimeOfDay is a wall clock time in minutes since midnight.
type TimeOfDay uint16

const (
	Midnight  TimeOfDay = 0
	EndOfDay  TimeOfDay = 24 * 60
	minuteMax           = 59
)

// At builds a TimeOfDay from hours and minutes.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay reads "HH:MM". "24:00" is accepted as the end of the day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time %q: want HH:MM", s)
	}
	if !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return 0, fmt.Errorf("time %q: want two digits for hours and minutes", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time %q: bad hour: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time %q: bad minute: %w", s, err)
	}
	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > minuteMax {
		return 0, fmt.Errorf("time %q: must be between 00:00 and 24:00", s)
	}
	return At(h, m), nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// TimeSlot holds a setpoint for the half open interval [Start, End).
type TimeSlot struct {
	Start    TimeOfDay
	End      TimeOfDay
	Setpoint float64
}

// NewTimeSlot returns an *InvalidRangeError unless start < end <= 24:00.
func NewTimeSlot(start, end TimeOfDay, setpoint float64) (TimeSlot, error) {
	s := TimeSlot{Start: start, End: end, Setpoint: setpoint}
	if err := s.check(); err != nil {
		return TimeSlot{}, err
	}
	return s, nil
}

func (s TimeSlot) check() error {
	if s.Start >= s.End || s.End > EndOfDay {
		return &InvalidRangeError{Start: s.Start, End: s.End}
	}
	return nil
}

// Overlaps reports whether the two slots share any minute.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s-%s %.1f°C", s.Start, s.End, s.Setpoint)
}

// Limits is the setpoint range a thermostat accepts.
type Limits struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultLimits matches the Danfoss Ally radiator thermostat.
var DefaultLimits = Limits{Min: 5.0, Max: 35.0, Step: 0.5}

// Check returns a *SetpointError when v is out of range or off step.
func (l Limits) Check(v float64) error {
	if v < l.Min || v > l.Max {
		return &SetpointError{Setpoint: v, Limits: l}
	}
	if l.Step > 0 {
		n := v / l.Step
		if math.Abs(n-math.Round(n)) > 1e-9 {
			return &SetpointError{Setpoint: v, Limits: l}
		}
	}
	return nil
}
