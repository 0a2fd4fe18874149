package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Name          string         `json:"name"`
	State         string         `json:"state"`
	Pressed       bool           `json:"pressed"`
	Clicks        int            `json:"clicks"`
	Idle          bool           `json:"idle"`
	LongPressed   bool           `json:"long_pressed"`
	PressedMs     int64          `json:"pressed_ms"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        map[string]int `json:"event_counts"`
	LastEvent     *EventJSON     `json:"last_event,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Prefix    string `json:"prefix,omitempty"`
}

// EventJSON is the JSON representation of the last classified event.
type EventJSON struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Clicks    int    `json:"clicks,omitempty"`
	PressedMs int64  `json:"pressed_ms,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Source           string `json:"source"`
	PollMs           int64  `json:"poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	ClickMs          int64  `json:"click_ms"`
	LongPressMs      int64  `json:"long_press_ms"`
	IdleMs           int64  `json:"idle_ms"`
	DuringIntervalMs int64  `json:"during_interval_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.Button.State)
	if state == "" {
		state = "UNKNOWN"
	}

	// Every kind is listed so dashboards see zeros rather than missing keys.
	counts := make(map[string]int, len(logic.EventTypes))
	for _, t := range logic.EventTypes {
		counts[string(t)] = snap.Counts[t]
	}

	inner := StatusInner{
		Name:          snap.Config.Name,
		State:         state,
		Pressed:       snap.Button.Pressed,
		Clicks:        snap.Button.Clicks,
		Idle:          snap.Button.Idle,
		LongPressed:   snap.Button.LongPressed,
		PressedMs:     snap.Button.PressedFor.Milliseconds(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Prefix:    snap.Config.Prefix,
		},
		Counts: counts,
		Config: ConfigJSON{
			Source:           snap.Config.Source,
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			ClickMs:          snap.Config.ClickMs,
			LongPressMs:      snap.Config.LongPressMs,
			IdleMs:           snap.Config.IdleMs,
			DuringIntervalMs: snap.Config.DuringIntervalMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}

	if ev := snap.LastEvent; ev != nil {
		inner.LastEvent = &EventJSON{
			Type:      string(ev.Type),
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339Nano),
			Clicks:    ev.Clicks,
			PressedMs: ev.PressedFor.Milliseconds(),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
