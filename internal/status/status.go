// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is read by HTTP handlers and the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Name             string
	Source           string
	PollMs           int64
	DebounceMs       int64
	ClickMs          int64
	LongPressMs      int64
	IdleMs           int64
	DuringIntervalMs int64
	HeartbeatMs      int64
	Broker           string
	Prefix           string
	HTTPAddr         string
}

// ButtonState is the classifier view of the button at one poll.
type ButtonState struct {
	State       logic.State
	Pressed     bool // debounced level
	Clicks      int
	Idle        bool
	LongPressed bool
	PressedFor  time.Duration
}

// ButtonStateOf reads the current state of b as of now.
func ButtonStateOf(b *logic.Button, now time.Time) ButtonState {
	return ButtonState{
		State:       b.State(),
		Pressed:     b.Debounced(),
		Clicks:      b.Clicks(),
		Idle:        b.IsIdle(),
		LongPressed: b.IsLongPressed(),
		PressedFor:  b.PressedFor(now),
	}
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Button        ButtonState
	Counts        logic.EventCounts
	LastEvent     *logic.Event
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Button:    ButtonState{State: logic.StateInit, Idle: true},
		},
	}
}

// Update sets the button state and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state ButtonState, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Button = state
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordEvent remembers the most recent classified event.
func (t *Tracker) RecordEvent(ev logic.Event) {
	t.mu.Lock()
	t.snap.LastEvent = &ev
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = t.snap.Counts.Clone()
	if t.snap.LastEvent != nil {
		ev := *t.snap.LastEvent
		s.LastEvent = &ev
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
