package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	// AllyModel is the zigbee2mqtt model id of the Danfoss Ally thermostat.
	AllyModel = "014G2461"

	configDirName = ".danfoss_ally"
)

// Dir is where the config and the saved schedules live by default.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

func DefaultConfigPath() string   { return filepath.Join(Dir(), "config.yaml") }
func DefaultSchedulePath() string { return filepath.Join(Dir(), "schedule_config.yaml") }

// Load reads a YAML config file. Environment variables in it are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "allyscheduler"
	}
	if c.MQTT.TopicDiscovery == "" {
		c.MQTT.TopicDiscovery = "zigbee2mqtt/bridge/devices"
	}
	if c.MQTT.TopicSet == "" {
		c.MQTT.TopicSet = "zigbee2mqtt/{}/set"
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = 10 * time.Second
	}
	if c.MQTT.PublishTimeout == 0 {
		c.MQTT.PublishTimeout = 5 * time.Second
	}
	if c.MQTT.DiscoveryWait == 0 {
		c.MQTT.DiscoveryWait = 2 * time.Second
	}
	if c.Thermostat.Model == "" {
		c.Thermostat.Model = AllyModel
	}
	if c.Thermostat.MinTemperature == 0 && c.Thermostat.MaxTemperature == 0 {
		c.Thermostat.MinTemperature = 5.0
		c.Thermostat.MaxTemperature = 35.0
	}
	if c.Thermostat.Step == 0 {
		c.Thermostat.Step = 0.5
	}
	if c.Apply.ScheduleFile == "" {
		c.Apply.ScheduleFile = DefaultSchedulePath()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the MQTT settings needed to reach the broker.
func (c *Config) Validate() error {
	m := c.MQTT
	if m.Broker == "" || m.Port == 0 || m.User == "" || m.Password == "" {
		return errors.New("required MQTT configuration fields are missing (broker, port, user, password)")
	}
	if m.UseTLS && m.CACerts == "" {
		return errors.New("CA certificates path is required when TLS is enabled")
	}
	if (m.CertFile == "") != (m.KeyFile == "") {
		return errors.New("certfile and keyfile must be set together")
	}
	if c.Thermostat.MinTemperature >= c.Thermostat.MaxTemperature {
		return fmt.Errorf("min_temperature %.1f must be below max_temperature %.1f",
			c.Thermostat.MinTemperature, c.Thermostat.MaxTemperature)
	}
	if c.Apply.Retries < 0 {
		return errors.New("apply retries must not be negative")
	}
	return nil
}
