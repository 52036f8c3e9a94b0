// Package ally speaks the zigbee2mqtt dialect of the Danfoss Ally
// radiator thermostat.
package ally

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// Weekly schedule command of the ZCL thermostat cluster.
const (
	ThermostatCluster      = 513
	SetWeeklySchedule      = 1
	modeHeat               = 1
	topicDevicePlaceholder = "{}"
)

type Transition struct {
	TransitionTime int `json:"transitionTime"`
	HeatSetpoint   int `json:"heatSetpoint"`
}

// NewTransition starts setpoint at t. Setpoints go on the wire in
// hundredths of a degree.
func NewTransition(t schedule.TimeOfDay, setpoint float64) Transition {
	return Transition{
		TransitionTime: int(t),
		HeatSetpoint:   int(math.Round(setpoint * 100)),
	}
}

type WeeklySchedule struct {
	DayOfWeek   int          `json:"dayofweek"`
	Mode        int          `json:"mode"`
	NumOfTrans  int          `json:"numoftrans"`
	Transitions []Transition `json:"transitions"`
}

type ClusterCommand struct {
	Cluster int            `json:"cluster"`
	Command int            `json:"command"`
	Payload WeeklySchedule `json:"payload"`
}

type Message struct {
	Command ClusterCommand `json:"command"`
}

// NewMessage sets the given slots for every day in days.
func NewMessage(days []schedule.Weekday, slots ...schedule.TimeSlot) Message {
	mask := 0
	for _, d := range days {
		mask |= d.Bit()
	}
	trans := make([]Transition, len(slots))
	for i, s := range slots {
		trans[i] = NewTransition(s.Start, s.Setpoint)
	}
	return Message{Command: ClusterCommand{
		Cluster: ThermostatCluster,
		Command: SetWeeklySchedule,
		Payload: WeeklySchedule{
			DayOfWeek:   mask,
			Mode:        modeHeat,
			NumOfTrans:  len(trans),
			Transitions: trans,
		},
	}}
}

// Payload is the JSON body setting the whole program of one day. The
// thermostat replaces the day's transitions with these.
func Payload(day schedule.Weekday, slots []schedule.TimeSlot) ([]byte, error) {
	b, err := json.Marshal(NewMessage([]schedule.Weekday{day}, slots...))
	if err != nil {
		return nil, fmt.Errorf("encoding ally payload: %w", err)
	}
	return b, nil
}

// Topic fills the device into a zigbee2mqtt topic such as
// "zigbee2mqtt/{}/set". Formats without a placeholder get the device
// appended as a level.
func Topic(format, device string) string {
	if strings.Contains(format, topicDevicePlaceholder) {
		return strings.Replace(format, topicDevicePlaceholder, device, 1)
	}
	return strings.TrimSuffix(format, "/") + "/" + device
}
