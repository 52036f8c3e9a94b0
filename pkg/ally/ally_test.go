package ally

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

func TestPayload(t *testing.T) {
	slot := schedule.TimeSlot{Start: schedule.At(8, 30), End: schedule.At(12, 0), Setpoint: 21.5}
	b, err := Payload(schedule.Wednesday, []schedule.TimeSlot{slot})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"command": map[string]any{
			"cluster": 513.0,
			"command": 1.0,
			"payload": map[string]any{
				"dayofweek":  4.0,
				"mode":       1.0,
				"numoftrans": 1.0,
				"transitions": []any{
					map[string]any{"transitionTime": 510.0, "heatSetpoint": 2150.0},
				},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payload = %s", b)
	}
}

func TestNewMessageDayMask(t *testing.T) {
	m := NewMessage([]schedule.Weekday{schedule.Monday, schedule.Wednesday})
	if m.Command.Payload.DayOfWeek != 5 {
		t.Errorf("dayofweek = %d, want 5", m.Command.Payload.DayOfWeek)
	}
	if all := NewMessage(schedule.Weekdays); all.Command.Payload.DayOfWeek != 127 {
		t.Errorf("all days = %d", all.Command.Payload.DayOfWeek)
	}
}

func TestTransitionRounding(t *testing.T) {
	if tr := NewTransition(schedule.Midnight, 17.55); tr.HeatSetpoint != 1755 {
		t.Errorf("heatSetpoint = %d", tr.HeatSetpoint)
	}
}

func TestTopic(t *testing.T) {
	tests := []struct{ format, want string }{
		{"zigbee2mqtt/{}/set", "zigbee2mqtt/bedroom/set"},
		{"zigbee2mqtt/", "zigbee2mqtt/bedroom"},
		{"ally", "ally/bedroom"},
	}
	for _, tt := range tests {
		if got := Topic(tt.format, "bedroom"); got != tt.want {
			t.Errorf("Topic(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestParseDevices(t *testing.T) {
	payload := []byte(`[
		{"friendly_name": "Coordinator", "type": "Coordinator"},
		{"friendly_name": "bedroom", "definition": {"model": "014G2461"}},
		{"friendly_name": "hall_light", "definition": {"model": "LED1545G12"}},
		{"friendly_name": "kitchen", "definition": {"model": "014G2461"}},
		{"friendly_name": "bedroom", "definition": {"model": "014G2461"}}
	]`)
	got, err := ParseDevices(payload, "014G2461")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"bedroom", "kitchen"}) {
		t.Errorf("ParseDevices = %v", got)
	}

	if _, err := ParseDevices([]byte("not json"), "014G2461"); err == nil {
		t.Error("ParseDevices accepted invalid JSON")
	}
}
