package logic

import (
	"fmt"
	"time"
)

// Source reads the current logical level of a button. Implementations apply
// pin polarity, so true always means pressed.
type Source interface {
	Read() (bool, error)
}

// Button is a debouncer and classifier driven as one poll pipeline.
// One Button corresponds to one physical or logical button and must only be
// polled from a single goroutine.
type Button struct {
	src        Source
	clock      func() time.Time
	debouncer  *Debouncer
	classifier *Classifier
	counts     EventCounts
}

// NewButton creates a button reading from src. src may be nil when the button
// is only driven through TickLevel or Process.
func NewButton(src Source, cfg Config) *Button {
	return &Button{
		src:        src,
		clock:      time.Now,
		debouncer:  NewDebouncer(cfg.Debounce),
		classifier: NewClassifier(cfg),
		counts:     make(EventCounts),
	}
}

// SetClock replaces the clock used by Tick and TickLevel.
func (b *Button) SetClock(clock func() time.Time) {
	b.clock = clock
}

// Tick reads the source at the current clock instant and advances the engine.
func (b *Button) Tick() ([]Event, error) {
	if b.src == nil {
		return nil, fmt.Errorf("tick: button has no source")
	}
	now := b.clock()
	active, err := b.src.Read()
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return b.Process(Input{Active: active, Time: now}), nil
}

// TickLevel advances the engine with a caller-supplied level at the current
// clock instant.
func (b *Button) TickLevel(active bool) []Event {
	return b.Process(Input{Active: active, Time: b.clock()})
}

// Process debounces the sample and steps the classifier. The debouncer and
// classifier always observe the same instant.
func (b *Button) Process(input Input) []Event {
	level := b.debouncer.Filter(input.Active, input.Time)
	events := b.classifier.Step(level, input.Time)
	for _, e := range events {
		b.counts[e.Type]++
	}
	return events
}

// On registers h for events of type t, replacing any previous handler.
// Registering double or multi click handlers raises the burst size at which
// clicks are dispatched without waiting for the click window.
func (b *Button) On(t EventType, h Handler) {
	b.classifier.On(t, h)
}

// Reset forces the engine back to its idle state without firing handlers.
func (b *Button) Reset() {
	b.classifier.Reset()
}

// SetDebounce sets the debounce window. A negative window accepts presses
// immediately.
func (b *Button) SetDebounce(d time.Duration) {
	b.debouncer.SetWindow(d)
	cfg := b.classifier.Config()
	cfg.Debounce = d
	b.classifier.SetConfig(cfg)
}

// SetClick sets the click window.
func (b *Button) SetClick(d time.Duration) {
	cfg := b.classifier.Config()
	cfg.Click = d
	b.classifier.SetConfig(cfg)
}

// SetLongPress sets the long press threshold.
func (b *Button) SetLongPress(d time.Duration) {
	cfg := b.classifier.Config()
	cfg.LongPress = d
	b.classifier.SetConfig(cfg)
}

// SetIdle sets the idle threshold.
func (b *Button) SetIdle(d time.Duration) {
	cfg := b.classifier.Config()
	cfg.Idle = d
	b.classifier.SetConfig(cfg)
}

// SetDuringInterval sets the minimum interval between during-long-press events.
func (b *Button) SetDuringInterval(d time.Duration) {
	cfg := b.classifier.Config()
	cfg.DuringInterval = d
	b.classifier.SetConfig(cfg)
}

// Config returns the active thresholds.
func (b *Button) Config() Config {
	return b.classifier.Config()
}

// State returns the current classifier state.
func (b *Button) State() State {
	return b.classifier.State()
}

// Clicks returns the number of clicks in the current burst.
func (b *Button) Clicks() int {
	return b.classifier.Clicks()
}

// IsIdle reports whether the button is waiting for a press.
func (b *Button) IsIdle() bool {
	return b.classifier.IsIdle()
}

// IsLongPressed reports whether a long press is in progress.
func (b *Button) IsLongPressed() bool {
	return b.classifier.IsLongPressed()
}

// PressedFor returns how long the current press has lasted at now.
func (b *Button) PressedFor(now time.Time) time.Duration {
	return b.classifier.PressedFor(now)
}

// Debounced returns the current debounced level.
func (b *Button) Debounced() bool {
	return b.debouncer.Level()
}

// EventCountsSnapshot returns a copy of the per-type event counts since creation.
func (b *Button) EventCountsSnapshot() EventCounts {
	return b.counts.Clone()
}
