package command

import (
	"errors"
	"fmt"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// Command sets one slot of one day on one thermostat.
type Command struct {
	Device string
	Day    schedule.Weekday
	Slot   schedule.TimeSlot
}

func (c Command) String() string {
	return fmt.Sprintf("%s %s %s", c.Device, c.Day, c.Slot)
}

var ErrEmptySelection = errors.New("empty selection")

// PreconditionError means Compile was handed a schedule that did not pass
// validation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "compile: " + e.Reason
}

// UnknownDeviceError is returned for a device the schedule does not target.
type UnknownDeviceError struct {
	Device string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("device %q is not a target of this schedule", e.Device)
}

// SelectionError rejects an empty or repeated day or device selection.
type SelectionError struct {
	What string
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selected %s: %v", e.What, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// Compile expands s into one command per device, day and slot. Devices
// and days keep the caller's order, slots are in start order.
func Compile(s *schedule.Schedule, days []schedule.Weekday, devices []string) ([]Command, error) {
	if !s.Sealed() {
		return nil, &PreconditionError{Reason: "schedule has not been validated"}
	}
	if err := checkDays(days); err != nil {
		return nil, err
	}
	if err := checkDevices(s, devices); err != nil {
		return nil, err
	}

	perDevice := 0
	slots := make([][]schedule.TimeSlot, len(days))
	for i, d := range days {
		slots[i] = s.Slots(d)
		perDevice += len(slots[i])
	}

	cmds := make([]Command, 0, perDevice*len(devices))
	for _, dev := range devices {
		for i, d := range days {
			for _, slot := range slots[i] {
				cmds = append(cmds, Command{Device: dev, Day: d, Slot: slot})
			}
		}
	}
	return cmds, nil
}

func checkDays(days []schedule.Weekday) error {
	if len(days) == 0 {
		return &SelectionError{What: "days", Err: ErrEmptySelection}
	}
	var seen [7]bool
	for _, d := range days {
		if !d.Valid() {
			return &SelectionError{What: "days", Err: fmt.Errorf("invalid day %d", int(d))}
		}
		if seen[d] {
			return &SelectionError{What: "days", Err: fmt.Errorf("%s listed twice", d)}
		}
		seen[d] = true
	}
	return nil
}

func checkDevices(s *schedule.Schedule, devices []string) error {
	if len(devices) == 0 {
		return &SelectionError{What: "devices", Err: ErrEmptySelection}
	}
	seen := make(map[string]bool, len(devices))
	for _, dev := range devices {
		if !s.HasDevice(dev) {
			return &UnknownDeviceError{Device: dev}
		}
		if seen[dev] {
			return &SelectionError{What: "devices", Err: fmt.Errorf("%s listed twice", dev)}
		}
		seen[dev] = true
	}
	return nil
}

// Devices lists the distinct devices of cmds in first-seen order.
func Devices(cmds []Command) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range cmds {
		if !seen[c.Device] {
			seen[c.Device] = true
			out = append(out, c.Device)
		}
	}
	return out
}

// Days lists the distinct days of cmds in first-seen order.
func Days(cmds []Command) []schedule.Weekday {
	var out []schedule.Weekday
	var seen [7]bool
	for _, c := range cmds {
		if c.Day.Valid() && !seen[c.Day] {
			seen[c.Day] = true
			out = append(out, c.Day)
		}
	}
	return out
}
