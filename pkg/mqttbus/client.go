package mqttbus

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/automatedhome/allyscheduler/pkg/ally"
	"github.com/automatedhome/allyscheduler/pkg/apply"
	"github.com/automatedhome/allyscheduler/pkg/schedule"
	"github.com/automatedhome/allyscheduler/pkg/types"
)

const (
	qosAtLeastOnce = 1
	quiesceMillis  = 250
)

// Client publishes schedule commands and collects discovered thermostats.
type Client struct {
	// Programs supplies the rest of the day for every published slot.
	Programs *ally.Programs

	bus    mqtt.Client
	cfg    types.MQTT
	model  string
	logger zerolog.Logger

	mu      sync.Mutex
	devices []string
	seen    map[string]bool
}

func newClient(cfg types.MQTT, model string, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		model:  model,
		logger: logger.With().Str("component", "mqtt").Logger(),
		seen:   map[string]bool{},
	}
}

// Dial connects to the broker and subscribes to the discovery topic. It
// gives up after the configured connect timeout.
func Dial(cfg types.MQTT, model string, logger zerolog.Logger) (*Client, error) {
	c := newClient(cfg, model, logger)
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	broker := opts.Servers[0].Host

	c.bus = mqtt.NewClient(opts)
	token := c.bus.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connecting to %s: %w", broker, apply.ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", broker, err)
	}
	c.logger.Info().Str("broker", broker).Bool("tls", cfg.UseTLS).Msg("Connected to MQTT broker")
	return c, nil
}

func (c *Client) options() (*mqtt.ClientOptions, error) {
	brokerURL, err := BrokerURL(c.cfg)
	if err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL.String()).
		SetClientID(c.cfg.ClientID).
		SetUsername(c.cfg.User).
		SetPassword(c.cfg.Password).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.subscribe).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.logger.Warn().Err(err).Msg("Disconnected from MQTT broker")
		})
	if c.cfg.UseTLS {
		tlsConfig, err := TLSConfig(c.cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsConfig)
	}
	return opts, nil
}

// subscribe runs on every (re)connect.
func (c *Client) subscribe(client mqtt.Client) {
	token := client.Subscribe(c.cfg.TopicDiscovery, qosAtLeastOnce, c.onMessage)
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		c.logger.Error().Str("topic", c.cfg.TopicDiscovery).Msg("Timed out subscribing")
		return
	}
	if err := token.Error(); err != nil {
		c.logger.Error().Err(err).Str("topic", c.cfg.TopicDiscovery).Msg("Failed to subscribe")
	}
}

// BrokerURL accepts either a bare host or a full URL with an explicit
// scheme such as tcp://, ssl:// or ws://.
func BrokerURL(cfg types.MQTT) (*url.URL, error) {
	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "ssl"
	}
	raw := cfg.Broker
	if !strings.Contains(raw, "://") {
		host := raw
		if _, _, err := net.SplitHostPort(raw); err != nil {
			host = net.JoinHostPort(raw, strconv.Itoa(cfg.Port))
		}
		raw = scheme + "://" + host
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing broker address %q: %w", cfg.Broker, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("broker address %q has no host", cfg.Broker)
	}
	return u, nil
}

func TLSConfig(cfg types.MQTT) (*tls.Config, error) {
	pem, err := os.ReadFile(cfg.CACerts)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificates: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", cfg.CACerts)
	}
	tc := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

func (c *Client) onMessage(_ mqtt.Client, message mqtt.Message) {
	if message.Topic() != c.cfg.TopicDiscovery {
		return
	}
	found, err := ally.ParseDevices(message.Payload(), c.model)
	if err != nil {
		c.logger.Warn().Err(err).Str("topic", message.Topic()).Msg("Received incorrect device list")
		return
	}

	c.mu.Lock()
	for _, d := range found {
		if !c.seen[d] {
			c.seen[d] = true
			c.devices = append(c.devices, d)
		}
	}
	n := len(c.devices)
	c.mu.Unlock()
	c.logger.Info().Int("thermostats", n).Msg("Found thermostats")
}

// DiscoveredDevices returns the thermostats announced so far.
func (c *Client) DiscoveredDevices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.devices))
	copy(out, c.devices)
	return out
}

// Discover waits for device announcements, then returns what was found.
func (c *Client) Discover(ctx context.Context) []string {
	t := time.NewTimer(c.cfg.DiscoveryWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return c.DiscoveredDevices()
}

// Publish sends the day holding slot to one thermostat and waits for the
// broker.
func (c *Client) Publish(ctx context.Context, device string, day schedule.Weekday, slot schedule.TimeSlot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := c.Programs.Payload(device, day, slot)
	if err != nil {
		return fmt.Errorf("%w: %w", apply.ErrRejected, err)
	}
	topic := ally.Topic(c.cfg.TopicSet, device)

	timeout := c.cfg.PublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	c.logger.Debug().Str("topic", topic).RawJSON("payload", payload).Msg("Sending schedule")
	token := c.bus.Publish(topic, qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publishing to %s: %w", topic, apply.ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Close() {
	if c.bus != nil {
		c.bus.Disconnect(quiesceMillis)
	}
}

var errNotConnected = errors.New("not connected to MQTT broker")

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() error {
	if c.bus == nil || !c.bus.IsConnected() {
		return errNotConnected
	}
	return nil
}
