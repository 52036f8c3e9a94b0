package schedule

import "fmt"

// Builder assembles a Week piece by piece. Nothing it holds can be applied
// until Build succeeds.
type Builder struct {
	week *Week
}

func NewBuilder(limits Limits) *Builder {
	return &Builder{week: NewWeek(limits)}
}

// EditBuilder starts from a copy of an existing schedule.
func EditBuilder(s *Schedule) *Builder {
	return &Builder{week: s.Week()}
}

// AddSlot adds one slot to day, creating the day if needed.
func (b *Builder) AddSlot(day Weekday, slot TimeSlot) error {
	if !day.Valid() {
		return fmt.Errorf("invalid weekday %d", int(day))
	}
	if err := b.week.limits.Check(slot.Setpoint); err != nil {
		return err
	}
	ds := b.week.Day(day)
	if ds == nil {
		ds = &DaySchedule{}
	}
	if err := ds.AddSlot(slot); err != nil {
		return err
	}
	b.week.days[day] = ds
	return nil
}

// SetDays gives every day in days the same slots, replacing what was there.
// No day is changed if any slot is rejected.
func (b *Builder) SetDays(days []Weekday, slots ...TimeSlot) error {
	for _, s := range slots {
		if err := b.week.limits.Check(s.Setpoint); err != nil {
			return err
		}
	}
	ds, err := NewDaySchedule(slots...)
	if err != nil {
		return err
	}
	for _, d := range days {
		if !d.Valid() {
			return fmt.Errorf("invalid weekday %d", int(d))
		}
	}
	for _, d := range days {
		if err := b.week.SetDay(d, ds); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) ClearDay(day Weekday) error {
	return b.week.SetDay(day, nil)
}

func (b *Builder) SetDevices(devices ...string) {
	b.week.SetDevices(devices...)
}

// Remaining lists, in calendar order, the days that are not yet complete.
func (b *Builder) Remaining() []Weekday {
	var out []Weekday
	for _, d := range Weekdays {
		if ds := b.week.Day(d); ds == nil || !ds.IsComplete() {
			out = append(out, d)
		}
	}
	return out
}

// Validate reports what still keeps the schedule from being built.
func (b *Builder) Validate() ValidationErrors {
	return Validate(b.week)
}

// Build returns the finished schedule, or ValidationErrors.
func (b *Builder) Build() (*Schedule, error) {
	return Seal(b.week)
}

// Week returns a copy of the schedule as edited so far.
func (b *Builder) Week() *Week {
	return b.week.clone()
}
