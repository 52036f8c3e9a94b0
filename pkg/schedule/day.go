package schedule

import (
	"fmt"
	"sort"
)

// DaySchedule is the ordered list of slots for one weekday.
type DaySchedule struct {
	slots []TimeSlot
}

// NewDaySchedule adds the slots one by one and stops at the first error.
func NewDaySchedule(slots ...TimeSlot) (*DaySchedule, error) {
	ds := &DaySchedule{}
	for _, s := range slots {
		if err := ds.AddSlot(s); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// AddSlot inserts s keeping start order. The day is left untouched on error.
func (ds *DaySchedule) AddSlot(s TimeSlot) error {
	if err := s.check(); err != nil {
		return err
	}
	for _, existing := range ds.slots {
		if s.Overlaps(existing) {
			return &OverlapError{Slot: s, Existing: existing}
		}
	}
	i := sort.Search(len(ds.slots), func(i int) bool { return ds.slots[i].Start > s.Start })
	ds.slots = append(ds.slots, TimeSlot{})
	copy(ds.slots[i+1:], ds.slots[i:])
	ds.slots[i] = s
	return nil
}

// Slots returns a copy of the slots in start order.
func (ds *DaySchedule) Slots() []TimeSlot {
	if ds == nil {
		return nil
	}
	out := make([]TimeSlot, len(ds.slots))
	copy(out, ds.slots)
	return out
}

func (ds *DaySchedule) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.slots)
}

// IsComplete reports whether the slots cover 00:00-24:00 without gaps.
func (ds *DaySchedule) IsComplete() bool {
	return ds.coverageProblem() == ""
}

// SetpointAt returns the setpoint in effect at t.
func (ds *DaySchedule) SetpointAt(t TimeOfDay) (float64, bool) {
	for _, s := range ds.Slots() {
		if s.Start <= t && t < s.End {
			return s.Setpoint, true
		}
	}
	return 0, false
}

// coverageProblem describes the first hole or overlap, or returns "".
func (ds *DaySchedule) coverageProblem() string {
	slots := ds.Slots()
	if len(slots) == 0 {
		return "no time slots"
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	if slots[0].Start != Midnight {
		return fmt.Sprintf("nothing scheduled from %s to %s", Midnight, slots[0].Start)
	}
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		switch {
		case prev.End > cur.Start:
			return fmt.Sprintf("slot %s-%s overlaps %s-%s", prev.Start, prev.End, cur.Start, cur.End)
		case prev.End < cur.Start:
			return fmt.Sprintf("nothing scheduled from %s to %s", prev.End, cur.Start)
		}
	}
	if last := slots[len(slots)-1]; last.End != EndOfDay {
		return fmt.Sprintf("nothing scheduled from %s to %s", last.End, EndOfDay)
	}
	return ""
}

func (ds *DaySchedule) clone() *DaySchedule {
	if ds == nil {
		return nil
	}
	return &DaySchedule{slots: ds.Slots()}
}
