package logic

import "time"

// Debouncer filters a raw level into a stable level. A new level is only
// accepted once the raw input has held it for the configured window.
type Debouncer struct {
	window     time.Duration
	lastRaw    bool
	lastChange time.Time
	stable     bool
}

// NewDebouncer creates a debouncer with the given window. A negative window
// accepts presses immediately and holds releases for its absolute value.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Filter records a raw sample taken at now and returns the debounced level.
func (d *Debouncer) Filter(raw bool, now time.Time) bool {
	hold := d.window
	if hold < 0 {
		hold = -hold
	}

	if raw == d.lastRaw {
		if now.Sub(d.lastChange) >= hold {
			d.stable = raw
		}
		return d.stable
	}

	// Edge: restart the hold timer on the new level.
	d.lastRaw = raw
	d.lastChange = now
	if hold == 0 || (raw && d.window < 0) {
		d.stable = raw
	}
	return d.stable
}

// Level returns the current debounced level.
func (d *Debouncer) Level() bool {
	return d.stable
}

// Window returns the configured window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// SetWindow changes the window. History is kept, so a pending edge is judged
// against the new window on the next sample.
func (d *Debouncer) SetWindow(window time.Duration) {
	d.window = window
}
