package ally

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

func mondaySchedule(t *testing.T, devices ...string) *schedule.Schedule {
	t.Helper()
	b := schedule.NewBuilder(schedule.DefaultLimits)
	b.SetDevices(devices...)
	if err := b.SetDays(schedule.Weekdays, schedule.TimeSlot{Start: schedule.Midnight, End: schedule.EndOfDay, Setpoint: 17}); err != nil {
		t.Fatal(err)
	}
	err := b.SetDays([]schedule.Weekday{schedule.Monday},
		schedule.TimeSlot{Start: schedule.Midnight, End: schedule.At(7, 0), Setpoint: 18},
		schedule.TimeSlot{Start: schedule.At(7, 0), End: schedule.At(22, 0), Setpoint: 21},
		schedule.TimeSlot{Start: schedule.At(22, 0), End: schedule.EndOfDay, Setpoint: 16},
	)
	if err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProgramsPayloadCarriesWholeDay(t *testing.T) {
	s := mondaySchedule(t, "bedroom")
	p := NewPrograms()
	if err := p.Use(s); err != nil {
		t.Fatal(err)
	}

	want := []Transition{{0, 1800}, {420, 2100}, {1320, 1600}}
	var last []byte
	for _, slot := range s.Slots(schedule.Monday) {
		b, err := p.Payload("bedroom", schedule.Monday, slot)
		if err != nil {
			t.Fatal(err)
		}
		if last != nil && string(b) != string(last) {
			t.Errorf("payload for %s differs from the previous slot:\n%s\n%s", slot, b, last)
		}
		last = b
	}
	var m Message
	if err := json.Unmarshal(last, &m); err != nil {
		t.Fatal(err)
	}
	got := m.Command.Payload
	if got.DayOfWeek != 1 || got.NumOfTrans != 3 || !reflect.DeepEqual(got.Transitions, want) {
		t.Errorf("last monday message = %s", last)
	}
}

func TestProgramsErrors(t *testing.T) {
	s := mondaySchedule(t, "bedroom", "kitchen")
	p := NewPrograms()
	if err := p.Use(s, "bedroom"); err != nil {
		t.Fatal(err)
	}
	slot := s.Slots(schedule.Tuesday)[0]

	if _, err := p.Payload("kitchen", schedule.Tuesday, slot); !errors.Is(err, ErrNoProgram) {
		t.Errorf("unregistered device: %v", err)
	}
	var none *Programs
	if _, err := none.Payload("bedroom", schedule.Tuesday, slot); !errors.Is(err, ErrNoProgram) {
		t.Errorf("nil programs: %v", err)
	}
	foreign := schedule.TimeSlot{Start: schedule.At(1, 0), End: schedule.At(2, 0), Setpoint: 20}
	if _, err := p.Payload("bedroom", schedule.Tuesday, foreign); err == nil {
		t.Error("payload built for a slot outside the day's program")
	}

	if err := p.Use(mondaySchedule(t, "bedroom")); err == nil {
		t.Error("device registered with two schedules")
	}
	if err := p.Use(s); err != nil {
		t.Errorf("re-registering the same schedule: %v", err)
	}
	if err := p.Use(&schedule.Schedule{}); err == nil {
		t.Error("unsealed schedule accepted")
	}
}
