package ally

import (
	"encoding/json"
	"fmt"
)

type bridgeDevice struct {
	FriendlyName string `json:"friendly_name"`
	Definition   *struct {
		Model string `json:"model"`
	} `json:"definition"`
}

// ParseDevices reads a zigbee2mqtt bridge/devices message and returns the
// friendly names of the devices of the given model, in message order.
func ParseDevices(payload []byte, model string) ([]string, error) {
	var devices []bridgeDevice
	if err := json.Unmarshal(payload, &devices); err != nil {
		return nil, fmt.Errorf("decoding device list: %w", err)
	}
	var out []string
	seen := map[string]bool{}
	for _, d := range devices {
		if d.Definition == nil || d.Definition.Model != model || d.FriendlyName == "" {
			continue
		}
		if !seen[d.FriendlyName] {
			seen[d.FriendlyName] = true
			out = append(out, d.FriendlyName)
		}
	}
	return out, nil
}
