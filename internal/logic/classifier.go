package logic

import "time"

// Classifier is the click/press state machine. It consumes debounced levels
// and never applies bounce rejection of its own.
//
// A Classifier is not safe for concurrent use.
type Classifier struct {
	cfg      Config
	handlers registry

	state      State
	enteredAt  time.Time // zero until the first step after construction or reset
	pressStart time.Time
	clicks     int
	idleFired  bool
	lastDuring time.Time
}

// NewClassifier creates a classifier in the INIT state.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		cfg:      cfg.clamped(),
		handlers: make(registry),
		state:    StateInit,
	}
}

// On registers h for events of type t, replacing any previous handler.
// A nil handler removes the registration.
func (c *Classifier) On(t EventType, h Handler) {
	c.handlers.set(t, h)
}

// Step advances the state machine with the debounced level observed at now.
// Registered handlers are invoked in transition order; the same events are
// returned to the caller.
func (c *Classifier) Step(active bool, now time.Time) []Event {
	if c.enteredAt.IsZero() {
		c.enteredAt = now
	}

	var events []Event
	emit := func(ev Event) {
		ev.Timestamp = now
		events = append(events, ev)
		c.handlers.fire(ev)
	}

	// UP and PRESSEND are transient and resolve within the same step.
	for {
		elapsed := now.Sub(c.enteredAt)

		switch c.state {
		case StateInit:
			if !c.idleFired && elapsed > c.cfg.Idle {
				c.idleFired = true
				emit(Event{Type: EventIdle})
			}
			if active {
				c.enter(StateDown, now)
				c.pressStart = now
				c.clicks = 0
				c.idleFired = false
				emit(Event{Type: EventPressStart})
			}

		case StateDown:
			if !active {
				c.enter(StateUp, now)
				continue
			}
			if elapsed > c.cfg.LongPress {
				c.state = StatePress
				emit(Event{Type: EventLongPressStart, PressedFor: now.Sub(c.pressStart)})
			}

		case StateUp:
			c.clicks++
			c.state = StateCount
			continue

		case StateCount:
			if active {
				c.enter(StateDown, now)
				c.pressStart = now
				break
			}
			if elapsed >= c.cfg.Click || c.clicks >= c.handlers.maxClicks() {
				emit(Event{Type: clickEventType(c.clicks), Clicks: c.clicks})
				c.reset(now)
			}

		case StatePress:
			if !active {
				c.enter(StatePressEnd, now)
				continue
			}
			if c.lastDuring.IsZero() || now.Sub(c.lastDuring) >= c.cfg.DuringInterval {
				c.lastDuring = now
				emit(Event{Type: EventDuringLongPress, PressedFor: now.Sub(c.pressStart)})
			}

		case StatePressEnd:
			emit(Event{Type: EventLongPressStop, PressedFor: now.Sub(c.pressStart)})
			c.reset(now)

		default:
			// Corrupted state: restart from INIT without firing anything.
			c.reset(now)
		}
		return events
	}
}

func clickEventType(clicks int) EventType {
	switch {
	case clicks <= 1:
		return EventClick
	case clicks == 2:
		return EventDoubleClick
	default:
		return EventMultiClick
	}
}

func (c *Classifier) enter(s State, now time.Time) {
	c.state = s
	c.enteredAt = now
}

func (c *Classifier) reset(now time.Time) {
	c.state = StateInit
	c.enteredAt = now
	c.pressStart = time.Time{}
	c.clicks = 0
	c.idleFired = false
	c.lastDuring = time.Time{}
}

// Reset forces the classifier back to INIT. Thresholds and handlers are kept
// and no handler is invoked. The idle period restarts at the next step.
func (c *Classifier) Reset() {
	c.reset(time.Time{})
}

// State returns the current state.
func (c *Classifier) State() State {
	return c.state
}

// Clicks returns the number of clicks accumulated in the current burst.
// Inside a click handler it is still the size of the burst being reported.
func (c *Classifier) Clicks() int {
	return c.clicks
}

// IsIdle reports whether the classifier is waiting for a press.
func (c *Classifier) IsIdle() bool {
	return c.state == StateInit
}

// IsLongPressed reports whether a long press is in progress.
func (c *Classifier) IsLongPressed() bool {
	return c.state == StatePress
}

// PressedFor returns how long the current press has lasted at now, or zero if
// the button is not held.
func (c *Classifier) PressedFor(now time.Time) time.Duration {
	if c.state != StateDown && c.state != StatePress {
		return 0
	}
	return now.Sub(c.pressStart)
}

// Config returns the active thresholds.
func (c *Classifier) Config() Config {
	return c.cfg
}

// SetConfig replaces the thresholds. Negative values other than Debounce are
// clamped to zero.
func (c *Classifier) SetConfig(cfg Config) {
	c.cfg = cfg.clamped()
}
