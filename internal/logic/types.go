// Package logic contains the pure debounce and click classification engine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State is the current node of the classifier state machine.
type State string

const (
	StateInit     State = "INIT"     // idle, waiting for press
	StateDown     State = "DOWN"     // held since press edge
	StateUp       State = "UP"       // short press just ended
	StateCount    State = "COUNT"    // waiting for another press within the click window
	StatePress    State = "PRESS"    // long press ongoing
	StatePressEnd State = "PRESSEND" // long press just ended
)

// EventType is a classified button interaction.
type EventType string

const (
	EventPressStart      EventType = "PRESS_START"
	EventClick           EventType = "CLICK"
	EventDoubleClick     EventType = "DOUBLE_CLICK"
	EventMultiClick      EventType = "MULTI_CLICK"
	EventLongPressStart  EventType = "LONG_PRESS_START"
	EventDuringLongPress EventType = "DURING_LONG_PRESS"
	EventLongPressStop   EventType = "LONG_PRESS_STOP"
	EventIdle            EventType = "IDLE"
)

// EventTypes lists every event kind in a stable order.
var EventTypes = []EventType{
	EventPressStart,
	EventClick,
	EventDoubleClick,
	EventMultiClick,
	EventLongPressStart,
	EventDuringLongPress,
	EventLongPressStop,
	EventIdle,
}

// ParseEventType returns the EventType named by s.
func ParseEventType(s string) (EventType, bool) {
	for _, t := range EventTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Event is emitted by the classifier on a state transition.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Clicks is the burst size for click events, zero otherwise.
	Clicks int
	// PressedFor is how long the button has been held, for long press events.
	PressedFor time.Duration
}

// Input is a single sample of the (raw, undebounced) logical level.
type Input struct {
	Active bool // true = pressed, polarity already applied
	Time   time.Time
}

// Config holds the timing thresholds of a button.
type Config struct {
	// Debounce is the hold time before a level change is accepted.
	// A negative value accepts presses immediately and debounces releases by its
	// absolute value.
	Debounce time.Duration
	// Click is the window after a release in which another press extends the burst.
	Click time.Duration
	// LongPress is the hold time after which a press becomes a long press.
	LongPress time.Duration
	// Idle is how long the button must rest before the idle event fires.
	Idle time.Duration
	// DuringInterval throttles the during-long-press event. Zero fires on every poll.
	DuringInterval time.Duration
}

// Defaults match common mechanical tactile switches.
const (
	DefaultDebounce       = 50 * time.Millisecond
	DefaultClick          = 400 * time.Millisecond
	DefaultLongPress      = 800 * time.Millisecond
	DefaultIdle           = 1000 * time.Millisecond
	DefaultDuringInterval = 0
)

// DefaultConfig returns the default timing thresholds.
func DefaultConfig() Config {
	return Config{
		Debounce:       DefaultDebounce,
		Click:          DefaultClick,
		LongPress:      DefaultLongPress,
		Idle:           DefaultIdle,
		DuringInterval: DefaultDuringInterval,
	}
}

// clamped returns cfg with negative non-debounce thresholds raised to zero.
func (c Config) clamped() Config {
	c.Click = nonNegative(c.Click)
	c.LongPress = nonNegative(c.LongPress)
	c.Idle = nonNegative(c.Idle)
	c.DuringInterval = nonNegative(c.DuringInterval)
	return c
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// EventCounts tracks the number of each event type since startup.
type EventCounts map[EventType]int

// Clone returns an independent copy of the counts.
func (c EventCounts) Clone() EventCounts {
	out := make(EventCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
