package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

func testSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	b := schedule.NewBuilder(schedule.DefaultLimits)
	b.SetDevices("dev-A", "dev-B", "dev-C")
	three := []schedule.TimeSlot{
		{Start: schedule.At(7, 0), End: schedule.At(22, 0), Setpoint: 21},
		{Start: schedule.Midnight, End: schedule.At(7, 0), Setpoint: 18},
		{Start: schedule.At(22, 0), End: schedule.EndOfDay, Setpoint: 16},
	}
	two := []schedule.TimeSlot{
		{Start: schedule.Midnight, End: schedule.At(12, 0), Setpoint: 19},
		{Start: schedule.At(12, 0), End: schedule.EndOfDay, Setpoint: 20},
	}
	if err := b.SetDays(schedule.Weekdays, two...); err != nil {
		t.Fatal(err)
	}
	if err := b.SetDays([]schedule.Weekday{schedule.Monday}, three...); err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCompileOrder(t *testing.T) {
	s := testSchedule(t)
	cmds, err := Compile(s, []schedule.Weekday{schedule.Monday, schedule.Tuesday}, []string{"dev-A", "dev-B"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 10 {
		t.Fatalf("got %d commands, want 10", len(cmds))
	}

	type key struct {
		dev   string
		day   schedule.Weekday
		start schedule.TimeOfDay
	}
	var got []key
	for _, c := range cmds {
		got = append(got, key{c.Device, c.Day, c.Slot.Start})
	}
	var want []key
	for _, dev := range []string{"dev-A", "dev-B"} {
		for _, start := range []schedule.TimeOfDay{0, schedule.At(7, 0), schedule.At(22, 0)} {
			want = append(want, key{dev, schedule.Monday, start})
		}
		for _, start := range []schedule.TimeOfDay{0, schedule.At(12, 0)} {
			want = append(want, key{dev, schedule.Tuesday, start})
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order:\n got %v\nwant %v", got, want)
	}
}

func TestCompileFollowsCallerOrder(t *testing.T) {
	s := testSchedule(t)
	cmds, err := Compile(s, []schedule.Weekday{schedule.Sunday, schedule.Monday}, []string{"dev-C", "dev-A"})
	if err != nil {
		t.Fatal(err)
	}
	if got := Devices(cmds); !reflect.DeepEqual(got, []string{"dev-C", "dev-A"}) {
		t.Errorf("Devices = %v", got)
	}
	if got := Days(cmds); !reflect.DeepEqual(got, []schedule.Weekday{schedule.Sunday, schedule.Monday}) {
		t.Errorf("Days = %v", got)
	}
	if len(cmds) != 2*(2+3) {
		t.Errorf("got %d commands", len(cmds))
	}
}

func TestCompileErrors(t *testing.T) {
	s := testSchedule(t)
	mon := []schedule.Weekday{schedule.Monday}

	var pe *PreconditionError
	if _, err := Compile(nil, mon, []string{"dev-A"}); !errors.As(err, &pe) {
		t.Errorf("nil schedule: %v", err)
	}
	if _, err := Compile(&schedule.Schedule{}, mon, []string{"dev-A"}); !errors.As(err, &pe) {
		t.Errorf("unsealed schedule: %v", err)
	}

	var ue *UnknownDeviceError
	if _, err := Compile(s, mon, []string{"dev-A", "dev-Z"}); !errors.As(err, &ue) || ue.Device != "dev-Z" {
		t.Errorf("unknown device: %v", err)
	}

	if _, err := Compile(s, nil, []string{"dev-A"}); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("no days: %v", err)
	}
	if _, err := Compile(s, mon, nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("no devices: %v", err)
	}

	var se *SelectionError
	if _, err := Compile(s, []schedule.Weekday{schedule.Monday, schedule.Monday}, []string{"dev-A"}); !errors.As(err, &se) {
		t.Errorf("repeated day: %v", err)
	}
	if _, err := Compile(s, mon, []string{"dev-A", "dev-A"}); !errors.As(err, &se) {
		t.Errorf("repeated device: %v", err)
	}
	if _, err := Compile(s, []schedule.Weekday{schedule.Weekday(9)}, []string{"dev-A"}); !errors.As(err, &se) {
		t.Errorf("invalid day: %v", err)
	}
}
