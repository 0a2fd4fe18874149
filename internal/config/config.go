// Package config provides YAML configuration parsing for button-sensor.
//
// Example configuration:
//
//	name: desk
//	poll: 10ms
//
//	source:
//	  kind: gpiocdev
//	  chip: gpiochip0
//	  pin: 17
//	  active_low: true
//	  pull: up
//
//	timing:
//	  debounce: 50ms
//	  click: 400ms
//	  long_press: 800ms
//	  idle: 1s
//	  during_interval: 100ms
//
//	events: [CLICK, DOUBLE_CLICK, LONG_PRESS_START, LONG_PRESS_STOP]
//
//	mqtt:
//	  broker: tcp://192.168.1.200:1883
//	  heartbeat: 15m
//
//	http:
//	  addr: ":8080"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/logic"
)

// SourceKind selects where button levels come from.
type SourceKind string

const (
	SourceGPIOCdev SourceKind = "gpiocdev" // Linux GPIO character device
	SourceRPIO     SourceKind = "rpio"     // Raspberry Pi register access
	SourceMQTT     SourceKind = "mqtt"     // levels injected over the MQTT level topic
	SourceHTTP     SourceKind = "http"     // levels injected over POST /inject
	SourceKeyboard SourceKind = "keyboard" // levels injected from a terminal
)

// Hardware reports whether the kind reads a physical pin.
func (k SourceKind) Hardware() bool {
	return k == SourceGPIOCdev || k == SourceRPIO
}

// minPoll keeps the loop from spinning.
const minPoll = time.Millisecond

// Config is the root configuration structure.
type Config struct {
	// Name identifies the button in topics, payloads and the status page.
	Name string `yaml:"name"`

	// Poll is the sampling interval of the poll loop.
	Poll Duration `yaml:"poll"`

	Source SourceConfig `yaml:"source"`
	Timing TimingConfig `yaml:"timing"`

	// Events lists the event kinds to register handlers for. Registering
	// DOUBLE_CLICK or MULTI_CLICK makes single clicks wait for the click window.
	// Defaults to all kinds.
	Events []string `yaml:"events"`

	MQTT MQTTConfig `yaml:"mqtt"`
	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

// SourceConfig describes the level source.
type SourceConfig struct {
	Kind      SourceKind `yaml:"kind"`
	Chip      string     `yaml:"chip"`
	Pin       int        `yaml:"pin"`
	ActiveLow bool       `yaml:"active_low"`
	Pull      string     `yaml:"pull"`
	// TTY is the terminal used by the keyboard source.
	TTY string `yaml:"tty"`
}

// TimingConfig holds the engine thresholds.
type TimingConfig struct {
	Debounce       Duration `yaml:"debounce"`
	Click          Duration `yaml:"click"`
	LongPress      Duration `yaml:"long_press"`
	Idle           Duration `yaml:"idle"`
	DuringInterval Duration `yaml:"during_interval"`
}

// MQTTConfig configures event publishing. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
	// Prefix is the topic prefix. Defaults to home/button/<name>.
	Prefix    string   `yaml:"prefix"`
	ClientID  string   `yaml:"client_id"`
	Heartbeat Duration `yaml:"heartbeat"`
}

// HTTPConfig configures the status server. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the configuration used when a field is not set.
func Default() *Config {
	t := logic.DefaultConfig()
	return &Config{
		Name: "button",
		Poll: Duration(10 * time.Millisecond),
		Source: SourceConfig{
			Kind:      SourceGPIOCdev,
			Chip:      gpio.DefaultChip,
			Pin:       17,
			ActiveLow: true,
			Pull:      string(gpio.PullUp),
			TTY:       "/dev/tty",
		},
		Timing: TimingConfig{
			Debounce:       Duration(t.Debounce),
			Click:          Duration(t.Click),
			LongPress:      Duration(t.LongPress),
			Idle:           Duration(t.Idle),
			DuringInterval: Duration(t.DuringInterval),
		},
		MQTT: MQTTConfig{
			Heartbeat: Duration(15 * time.Minute),
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize fills derived defaults and validates the configuration. Call it
// again after overriding fields.
func (c *Config) Finalize() error {
	if c.MQTT.Prefix == "" {
		c.MQTT.Prefix = "home/button/" + c.Name
	}
	c.MQTT.Prefix = strings.TrimSuffix(c.MQTT.Prefix, "/")
	return c.validate()
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if c.Poll.Duration() < minPoll {
		return fmt.Errorf("poll must be at least %s, got %s", minPoll, c.Poll)
	}

	switch c.Source.Kind {
	case SourceGPIOCdev, SourceRPIO:
		if c.Source.Pin < 0 {
			return fmt.Errorf("source.pin must not be negative, got %d", c.Source.Pin)
		}
		if c.Source.Kind == SourceRPIO && c.Source.Pin > gpio.MaxRPIOPin {
			return fmt.Errorf("source.pin must be at most %d for rpio, got %d", gpio.MaxRPIOPin, c.Source.Pin)
		}
		if _, err := gpio.ParsePull(c.Source.Pull); err != nil {
			return fmt.Errorf("source.pull: %w", err)
		}
	case SourceMQTT:
		if c.MQTT.Broker == "" {
			return fmt.Errorf("source.kind mqtt requires mqtt.broker")
		}
	case SourceHTTP:
		if c.HTTP.Addr == "" {
			return fmt.Errorf("source.kind http requires http.addr")
		}
	case SourceKeyboard:
		if c.Source.TTY == "" {
			return fmt.Errorf("source.kind keyboard requires source.tty")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	for name, d := range map[string]Duration{
		"click":           c.Timing.Click,
		"long_press":      c.Timing.LongPress,
		"idle":            c.Timing.Idle,
		"during_interval": c.Timing.DuringInterval,
	} {
		if d < 0 {
			return fmt.Errorf("timing.%s must not be negative, got %s", name, d)
		}
	}
	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative, got %s", c.MQTT.Heartbeat)
	}

	if _, err := c.EventTypes(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// EventTypes returns the event kinds to register. An empty list means all.
func (c *Config) EventTypes() ([]logic.EventType, error) {
	if len(c.Events) == 0 {
		return logic.EventTypes, nil
	}
	out := make([]logic.EventType, 0, len(c.Events))
	for _, name := range c.Events {
		et, ok := logic.ParseEventType(strings.ToUpper(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown event %q", name)
		}
		out = append(out, et)
	}
	return out, nil
}

// Engine returns the engine thresholds.
func (t TimingConfig) Engine() logic.Config {
	return logic.Config{
		Debounce:       t.Debounce.Duration(),
		Click:          t.Click.Duration(),
		LongPress:      t.LongPress.Duration(),
		Idle:           t.Idle.Duration(),
		DuringInterval: t.DuringInterval.Duration(),
	}
}

// PinConfig returns the hardware pin settings.
func (s SourceConfig) PinConfig() gpio.PinConfig {
	pull, err := gpio.ParsePull(s.Pull)
	if err != nil {
		pull = gpio.PullUp
	}
	return gpio.PinConfig{
		Chip:      s.Chip,
		Pin:       s.Pin,
		ActiveLow: s.ActiveLow,
		Pull:      pull,
	}
}

// NewLogger builds the root logger described by the configuration.
func (l LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(l.Level); err == nil {
		logger.SetLevel(level)
	}
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
