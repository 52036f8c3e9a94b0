package ally

import (
	"errors"
	"fmt"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

var ErrNoProgram = errors.New("no schedule registered for device")

// Programs remembers which sealed schedule each thermostat is being given,
// so a single slot can go out together with the rest of its day.
type Programs struct {
	byDevice map[string]*schedule.Schedule
}

func NewPrograms() *Programs {
	return &Programs{byDevice: map[string]*schedule.Schedule{}}
}

// Use registers s for devices, or for all of its targets when none are
// given. A device can follow only one schedule.
func (p *Programs) Use(s *schedule.Schedule, devices ...string) error {
	if !s.Sealed() {
		return errors.New("program from an unsealed schedule")
	}
	if len(devices) == 0 {
		devices = s.TargetDevices()
	}
	for _, d := range devices {
		if prev, ok := p.byDevice[d]; ok && prev != s {
			return fmt.Errorf("device %s is already given another schedule", d)
		}
	}
	for _, d := range devices {
		p.byDevice[d] = s
	}
	return nil
}

// Day returns the slots device runs on day.
func (p *Programs) Day(device string, day schedule.Weekday) ([]schedule.TimeSlot, error) {
	var s *schedule.Schedule
	if p != nil {
		s = p.byDevice[device]
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProgram, device)
	}
	return s.Slots(day), nil
}

// Payload is the message carrying slot to device. It holds every
// transition of the day, so sending any slot of a day sends all of them.
func (p *Programs) Payload(device string, day schedule.Weekday, slot schedule.TimeSlot) ([]byte, error) {
	slots, err := p.Day(device, day)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		if s == slot {
			return Payload(day, slots)
		}
	}
	return nil, fmt.Errorf("slot %s is not in the %s program of %s", slot, day, device)
}
