// Package mqtt provides MQTT publishing and remote level injection with
// abstraction for testing.
package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/button-sensor/internal/logic"
)

// Topics are the MQTT topics used by one button.
type Topics struct {
	Events string // classified button events
	System string // lifecycle events and last will
	Level  string // injected levels (source kind mqtt)
}

// NewTopics derives the topics from a prefix such as home/button/desk.
func NewTopics(prefix string) Topics {
	return Topics{
		Events: prefix + "/events",
		System: prefix + "/system",
		Level:  prefix + "/level",
	}
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// timestampFormat keeps millisecond resolution; click timing matters below a second.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the button event details.
type ButtonPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Clicks    int    `json:"clicks,omitempty"`
	PressedMs int64  `json:"pressed_ms,omitempty"`
}

// FormatPayload creates the JSON payload for a button event. Every payload
// carries a fresh ID so consumers can drop duplicates replayed after a
// reconnect.
func FormatPayload(name string, event logic.Event) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			ID:        uuid.NewString(),
			Name:      name,
			Timestamp: event.Timestamp.UTC().Format(timestampFormat),
			Event:     string(event.Type),
			Clicks:    event.Clicks,
			PressedMs: event.PressedFor.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (last will, reconnect) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// ParseLevel interprets a level command payload.
func ParseLevel(payload []byte) (bool, error) {
	switch string(bytes.ToLower(bytes.TrimSpace(payload))) {
	case "1", "on", "true", "press", "pressed", "down":
		return true, nil
	case "0", "off", "false", "release", "released", "up":
		return false, nil
	default:
		return false, fmt.Errorf("unknown level %q", payload)
	}
}
