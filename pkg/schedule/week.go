package schedule

import "fmt"

// Week is a weekly schedule under construction. Days may be missing and
// nothing is checked across days until Validate.
type Week struct {
	days    [7]*DaySchedule
	devices []string
	limits  Limits
}

// NewWeek returns an empty week checked against the given setpoint limits.
func NewWeek(limits Limits, devices ...string) *Week {
	w := &Week{limits: limits}
	w.SetDevices(devices...)
	return w
}

// SetDay replaces the schedule of day with a copy of ds. A nil ds removes
// the day.
func (w *Week) SetDay(day Weekday, ds *DaySchedule) error {
	if !day.Valid() {
		return fmt.Errorf("invalid weekday %d", int(day))
	}
	w.days[day] = ds.clone()
	return nil
}

// Day returns the schedule of day, or nil if it was never set.
func (w *Week) Day(day Weekday) *DaySchedule {
	if !day.Valid() {
		return nil
	}
	return w.days[day]
}

// SetDevices replaces the target devices, dropping duplicates and blanks.
func (w *Week) SetDevices(devices ...string) {
	w.devices = nil
	seen := make(map[string]bool, len(devices))
	for _, d := range devices {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		w.devices = append(w.devices, d)
	}
}

// TargetDevices returns the devices this schedule is meant for.
func (w *Week) TargetDevices() []string {
	out := make([]string, len(w.devices))
	copy(out, w.devices)
	return out
}

func (w *Week) Limits() Limits { return w.limits }

func (w *Week) clone() *Week {
	c := &Week{limits: w.limits, devices: w.TargetDevices()}
	for i, ds := range w.days {
		c.days[i] = ds.clone()
	}
	return c
}

// Validate checks w for everything that would prevent it from being
// applied. It returns nil when w is complete. A nil week is reported like
// an empty one.
func Validate(w *Week) ValidationErrors {
	if w == nil {
		w = &Week{}
	}
	var errs ValidationErrors
	for _, day := range Weekdays {
		ds := w.Day(day)
		if ds == nil {
			errs = append(errs, ValidationError{Subject: day.String(), Reason: "day is missing"})
			continue
		}
		if problem := ds.coverageProblem(); problem != "" {
			errs = append(errs, ValidationError{Subject: day.String(), Reason: problem})
		}
		for _, s := range ds.slots {
			if err := w.limits.Check(s.Setpoint); err != nil {
				errs = append(errs, ValidationError{
					Subject: day.String(),
					Reason:  fmt.Sprintf("slot %s-%s: %v", s.Start, s.End, err),
				})
			}
		}
	}
	if len(w.devices) == 0 {
		errs = append(errs, ValidationError{Subject: SubjectDevices, Reason: "no target devices"})
	}
	return errs
}

// Schedule is a validated weekly schedule. It cannot be modified; call
// Week to get an editable copy.
type Schedule struct {
	week    *Week
	members map[string]bool
}

// Seal validates w and freezes a copy of it.
func Seal(w *Week) (*Schedule, error) {
	if errs := Validate(w); len(errs) > 0 {
		return nil, errs
	}
	s := &Schedule{week: w.clone(), members: make(map[string]bool, len(w.devices))}
	for _, d := range s.week.devices {
		s.members[d] = true
	}
	return s, nil
}

// Sealed reports whether s came out of Seal.
func (s *Schedule) Sealed() bool {
	return s != nil && s.week != nil
}

// Slots returns the slots of day in start order.
func (s *Schedule) Slots(day Weekday) []TimeSlot {
	return s.week.Day(day).Slots()
}

func (s *Schedule) TargetDevices() []string { return s.week.TargetDevices() }

func (s *Schedule) HasDevice(device string) bool { return s.members[device] }

func (s *Schedule) Limits() Limits { return s.week.limits }

// Week returns an editable copy.
func (s *Schedule) Week() *Week { return s.week.clone() }
