package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/logic"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, "button", cfg.Name)
	assert.Equal(t, 10*time.Millisecond, cfg.Poll.Duration())
	assert.Equal(t, SourceGPIOCdev, cfg.Source.Kind)
	assert.True(t, cfg.Source.ActiveLow)
	assert.Equal(t, logic.DefaultConfig(), cfg.Timing.Engine())
	assert.Equal(t, "home/button/button", cfg.MQTT.Prefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	events, err := cfg.EventTypes()
	require.NoError(t, err)
	assert.Equal(t, logic.EventTypes, events)
}

func TestParse_Full(t *testing.T) {
	yml := `
name: desk
poll: 5ms
source:
  kind: rpio
  pin: 22
  active_low: false
  pull: down
timing:
  debounce: -20ms
  click: 250ms
  long_press: 1s
  idle: 30s
  during_interval: 100ms
events: [click, LONG_PRESS_START]
mqtt:
  broker: tcp://localhost:1883
  prefix: office/buttons/desk/
  heartbeat: 1m
http:
  addr: ""
log:
  level: debug
  format: json
`
	cfg, err := Parse([]byte(yml))
	require.NoError(t, err)

	assert.Equal(t, "desk", cfg.Name)
	assert.Equal(t, 5*time.Millisecond, cfg.Poll.Duration())
	assert.Equal(t, gpio.PinConfig{Chip: gpio.DefaultChip, Pin: 22, ActiveLow: false, Pull: gpio.PullDown}, cfg.Source.PinConfig())
	assert.Equal(t, logic.Config{
		Debounce:       -20 * time.Millisecond,
		Click:          250 * time.Millisecond,
		LongPress:      time.Second,
		Idle:           30 * time.Second,
		DuringInterval: 100 * time.Millisecond,
	}, cfg.Timing.Engine())
	assert.Equal(t, "office/buttons/desk", cfg.MQTT.Prefix)
	assert.Equal(t, time.Minute, cfg.MQTT.Heartbeat.Duration())
	assert.Empty(t, cfg.HTTP.Addr)

	events, err := cfg.EventTypes()
	require.NoError(t, err)
	assert.Equal(t, []logic.EventType{logic.EventClick, logic.EventLongPressStart}, events)

	logger := cfg.Log.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"bad duration", "poll: fast"},
		{"poll too small", "poll: 0s"},
		{"empty name", `name: ""`},
		{"unknown source", "source: {kind: smoke-signal}"},
		{"negative pin", "source: {pin: -1}"},
		{"rpio pin out of range", "source: {kind: rpio, pin: 300}"},
		{"bad pull", "source: {pull: sideways}"},
		{"mqtt source without broker", "source: {kind: mqtt}"},
		{"http source without addr", "source: {kind: http}\nhttp: {addr: \"\"}"},
		{"negative click", "timing: {click: -1ms}"},
		{"negative heartbeat", "mqtt: {heartbeat: -1s}"},
		{"unknown event", "events: [TRIPLE_CLICK]"},
		{"bad log level", "log: {level: chatty}"},
		{"bad log format", "log: {format: xml}"},
		{"not yaml", "name: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}

func TestParse_InjectedSources(t *testing.T) {
	for _, yml := range []string{
		"source: {kind: mqtt}\nmqtt: {broker: tcp://localhost:1883}",
		"source: {kind: http}",
		"source: {kind: keyboard}",
	} {
		cfg, err := Parse([]byte(yml))
		require.NoError(t, err, yml)
		assert.False(t, cfg.Source.Kind.Hardware())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "button.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: hall\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hall", cfg.Name)
	assert.Equal(t, "home/button/hall", cfg.MQTT.Prefix)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFinalizeAfterOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Finalize())

	cfg.Poll = Duration(0)
	assert.Error(t, cfg.Finalize())
}

func TestTextLogger(t *testing.T) {
	logger := Default().Log.NewLogger()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
