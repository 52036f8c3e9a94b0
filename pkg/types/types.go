package types

import (
	"time"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// MQTT is the broker connection and the zigbee2mqtt topics.
type MQTT struct {
	Broker         string        `yaml:"broker"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	ClientID       string        `yaml:"client_id,omitempty"`
	TopicDiscovery string        `yaml:"topic_discovery"`
	TopicSet       string        `yaml:"topic_set"`
	UseTLS         bool          `yaml:"use_tls"`
	CACerts        string        `yaml:"ca_certs,omitempty"`
	CertFile       string        `yaml:"certfile,omitempty"`
	KeyFile        string        `yaml:"keyfile,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
	PublishTimeout time.Duration `yaml:"publish_timeout,omitempty"`
	DiscoveryWait  time.Duration `yaml:"discovery_wait,omitempty"`
}

type Thermostat struct {
	Model          string  `yaml:"model"`
	MinTemperature float64 `yaml:"min_temperature"`
	MaxTemperature float64 `yaml:"max_temperature"`
	Step           float64 `yaml:"step"`
}

// Limits returns the setpoint range schedules are checked against.
func (t Thermostat) Limits() schedule.Limits {
	return schedule.Limits{Min: t.MinTemperature, Max: t.MaxTemperature, Step: t.Step}
}

type Apply struct {
	ScheduleFile string        `yaml:"schedule_file"`
	Interval     time.Duration `yaml:"interval"`
	Retries      int           `yaml:"retries"`
	MetricsFile  string        `yaml:"metrics_file,omitempty"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	MQTT       MQTT       `yaml:"mqtt"`
	Thermostat Thermostat `yaml:"thermostat"`
	Apply      Apply      `yaml:"apply"`
	Log        Log        `yaml:"log"`
}
