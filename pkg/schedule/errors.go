package schedule

import (
	"fmt"
	"strings"
)

// InvalidRangeError is returned for a slot whose start is not before its end.
type InvalidRangeError struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid slot %s-%s: start must be before end", e.Start, e.End)
}

// OverlapError is returned when a slot intersects one already in the day.
type OverlapError struct {
	Slot     TimeSlot
	Existing TimeSlot
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("slot %s-%s overlaps %s-%s", e.Slot.Start, e.Slot.End, e.Existing.Start, e.Existing.End)
}

// SetpointError is returned for a temperature the thermostat cannot take.
type SetpointError struct {
	Setpoint float64
	Limits   Limits
}

func (e *SetpointError) Error() string {
	return fmt.Sprintf("setpoint %.2f°C must be between %.1f°C and %.1f°C in steps of %.1f°C",
		e.Setpoint, e.Limits.Min, e.Limits.Max, e.Limits.Step)
}

// SubjectDevices tags violations that concern the device list.
const SubjectDevices = "devices"

// ValidationError is one problem found in a weekly schedule. Subject is
// the day name for per-day problems or SubjectDevices.
type ValidationError struct {
	Subject string
	Reason  string
}

func (e ValidationError) Error() string {
	return e.Subject + ": " + e.Reason
}

// Day returns the weekday the violation is tagged with, if any.
func (e ValidationError) Day() (Weekday, bool) {
	d, err := ParseWeekday(e.Subject)
	return d, err == nil
}

// ValidationErrors carries every violation found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d schedule problem(s): %s", len(v), strings.Join(msgs, "; "))
}

// ForDay returns the violations tagged with d.
func (v ValidationErrors) ForDay(d Weekday) ValidationErrors {
	var out ValidationErrors
	for _, e := range v {
		if day, ok := e.Day(); ok && day == d {
			out = append(out, e)
		}
	}
	return out
}

// ParseError reports a document value that cannot become a core type.
type ParseError struct {
	Subject string
	Index   int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s slot %d: %v", e.Subject, e.Index+1, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Subject, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
