package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every event it handles.
type recorder struct {
	events []Event
}

func (r *recorder) Handle(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t EventType) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

type registrar interface {
	On(EventType, Handler)
}

// recordAll registers r for every event type, which also lifts the click
// ceiling to multi-click.
func recordAll(c registrar) *recorder {
	r := &recorder{}
	for _, t := range EventTypes {
		c.On(t, r)
	}
	return r
}

// step is a scripted debounced sample at a millisecond offset.
type step struct {
	at     int
	active bool
}

// press returns samples for a press at down and a release at up.
func press(down, up int) []step {
	return []step{{down, true}, {up, false}}
}

func run(c *Classifier, steps ...[]step) {
	for _, group := range steps {
		for _, s := range group {
			c.Step(s.active, ms(s.at))
		}
	}
}

// idleUntil returns inactive samples from 'from' to 'to' every 50ms.
func idleUntil(from, to int) []step {
	var out []step
	for at := from; at <= to; at += 50 {
		out = append(out, step{at, false})
	}
	return out
}

func TestNewClassifier(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	assert.Equal(t, StateInit, c.State())
	assert.Equal(t, 0, c.Clicks())
	assert.True(t, c.IsIdle())
	assert.False(t, c.IsLongPressed())
	assert.Equal(t, DefaultConfig(), c.Config())
}

func TestSingleClick(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := recordAll(c)

	run(c, []step{{0, false}}, press(100, 200))
	assert.Equal(t, StateCount, c.State())
	assert.Equal(t, 1, c.Clicks())

	// Click window not yet elapsed
	c.Step(false, ms(599))
	assert.Equal(t, 0, r.count(EventClick))

	c.Step(false, ms(600))
	assert.Equal(t, []EventType{EventPressStart, EventClick}, r.types())

	click, _ := r.last(EventClick)
	assert.Equal(t, 1, click.Clicks)
	assert.Equal(t, ms(600), click.Timestamp)
	assert.Equal(t, StateInit, c.State())
	assert.Equal(t, 0, c.Clicks())
}

func TestDoubleClick(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := recordAll(c)

	run(c, []step{{0, false}}, press(100, 200), press(300, 400), idleUntil(450, 800))

	assert.Equal(t, 1, r.count(EventDoubleClick))
	assert.Equal(t, 0, r.count(EventClick))
	assert.Equal(t, 0, r.count(EventMultiClick))
	assert.Equal(t, 1, r.count(EventPressStart), "second press of a burst does not restart it")

	dbl, _ := r.last(EventDoubleClick)
	assert.Equal(t, 2, dbl.Clicks)
	assert.Equal(t, ms(800), dbl.Timestamp)
	assert.Equal(t, StateInit, c.State())
}

func TestMultiClickCollapses(t *testing.T) {
	tests := []struct {
		name   string
		clicks int
	}{
		{"triple", 3},
		{"quadruple", 4},
		{"seven", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultConfig())
			r := recordAll(c)

			c.Step(false, ms(0))
			at := 100
			for i := 0; i < tt.clicks; i++ {
				run(c, press(at, at+100))
				at += 200
			}
			run(c, idleUntil(at, at+500))

			assert.Equal(t, 1, r.count(EventMultiClick))
			assert.Equal(t, 0, r.count(EventClick))
			assert.Equal(t, 0, r.count(EventDoubleClick))

			multi, _ := r.last(EventMultiClick)
			assert.Equal(t, tt.clicks, multi.Clicks)
		})
	}
}

func TestClicksReadableInsideHandler(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := -1
	c.On(EventMultiClick, Func(func() { got = c.Clicks() }))

	run(c, []step{{0, false}}, press(100, 200), press(300, 400), press(500, 600), idleUntil(650, 1100))

	assert.Equal(t, 3, got)
	assert.Equal(t, 0, c.Clicks(), "reset after dispatch")
}

func TestLongPress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DuringInterval = 100 * time.Millisecond
	c := NewClassifier(cfg)
	r := recordAll(c)

	c.Step(true, ms(0))
	for at := 50; at <= 2000; at += 50 {
		c.Step(true, ms(at))
		if at == 800 {
			assert.False(t, c.IsLongPressed(), "threshold is exclusive")
		}
		if at == 850 {
			assert.True(t, c.IsLongPressed())
		}
	}
	c.Step(false, ms(2050))

	assert.Equal(t, 1, r.count(EventPressStart))
	assert.Equal(t, 1, r.count(EventLongPressStart))
	assert.Equal(t, 1, r.count(EventLongPressStop))
	assert.Equal(t, 0, r.count(EventClick)+r.count(EventDoubleClick)+r.count(EventMultiClick))

	// Held in PRESS from 850ms to 2000ms with a 100ms interval
	held := 2000 - 850
	assert.InDelta(t, float64(held)/100, float64(r.count(EventDuringLongPress)), 1)

	start, _ := r.last(EventLongPressStart)
	assert.Equal(t, 850*time.Millisecond, start.PressedFor)
	stop, _ := r.last(EventLongPressStop)
	assert.Equal(t, ms(2050), stop.Timestamp)
	assert.Equal(t, 2050*time.Millisecond, stop.PressedFor)

	types := r.types()
	assert.Equal(t, EventPressStart, types[0])
	assert.Equal(t, EventLongPressStart, types[1])
	assert.Equal(t, EventLongPressStop, types[len(types)-1])
	assert.Equal(t, StateInit, c.State())
}

func TestDuringLongPressZeroIntervalFiresEveryPoll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LongPress = 100 * time.Millisecond
	c := NewClassifier(cfg)
	r := recordAll(c)

	c.Step(true, ms(0))
	c.Step(true, ms(150)) // long press start
	for at := 160; at < 200; at += 10 {
		c.Step(true, ms(at))
	}

	assert.Equal(t, 4, r.count(EventDuringLongPress))
}

func TestIdleFiresOncePerPeriod(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := recordAll(c)

	c.Step(false, ms(0))
	c.Step(false, ms(1000))
	assert.Equal(t, 0, r.count(EventIdle), "threshold is exclusive")

	c.Step(false, ms(1001))
	for at := 1100; at <= 5000; at += 100 {
		c.Step(false, ms(at))
	}
	assert.Equal(t, 1, r.count(EventIdle))

	// A click burst re-arms idle detection
	run(c, press(5100, 5200), idleUntil(5250, 5600))
	require.Equal(t, 1, r.count(EventClick))
	run(c, idleUntil(5650, 6600))
	assert.Equal(t, 1, r.count(EventIdle))

	c.Step(false, ms(6601))
	assert.Equal(t, 2, r.count(EventIdle))
}

func TestEarlyDispatchSingleClickOnly(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := &recorder{}
	c.On(EventClick, r)

	c.Step(false, ms(0))
	run(c, press(100, 200))
	require.Equal(t, 1, r.count(EventClick))
	first, _ := r.last(EventClick)
	assert.Equal(t, ms(200), first.Timestamp, "resolved on the release poll")

	// Second press well inside the click window resolves on its own
	run(c, press(300, 400))
	assert.Equal(t, 2, r.count(EventClick))
	second, _ := r.last(EventClick)
	assert.Equal(t, ms(400), second.Timestamp)
	assert.Equal(t, 1, second.Clicks)
}

func TestEarlyDispatchDoubleCeiling(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := &recorder{}
	c.On(EventClick, r)
	c.On(EventDoubleClick, r)

	c.Step(false, ms(0))
	run(c, press(100, 200), press(300, 400))

	require.Equal(t, 1, r.count(EventDoubleClick))
	dbl, _ := r.last(EventDoubleClick)
	assert.Equal(t, ms(400), dbl.Timestamp)
	assert.Equal(t, StateInit, c.State())
}

func TestUnregisterLowersCeiling(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := &recorder{}
	c.On(EventClick, r)
	c.On(EventDoubleClick, r)
	c.On(EventDoubleClick, nil)

	c.Step(false, ms(0))
	run(c, press(100, 200))
	assert.Equal(t, 1, r.count(EventClick))
}

func TestReregisterReplacesHandler(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	first, second := &recorder{}, &recorder{}
	c.On(EventPressStart, first)
	c.On(EventPressStart, second)

	c.Step(true, ms(0))
	assert.Empty(t, first.events)
	assert.Len(t, second.events, 1)
}

func TestParamFunc(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	var got any
	c.On(EventPressStart, ParamFunc(func(p any) { got = p }, "desk"))

	c.Step(true, ms(0))
	assert.Equal(t, "desk", got)
}

func TestUnregisteredEventsStillReturned(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Step(false, ms(0))
	events := c.Step(true, ms(10))
	require.Len(t, events, 1)
	assert.Equal(t, EventPressStart, events[0].Type)
}

func TestReset(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := recordAll(c)

	run(c, []step{{0, false}}, press(100, 200), []step{{300, true}})
	require.Equal(t, StateDown, c.State())
	fired := len(r.events)

	c.Reset()
	assert.Equal(t, StateInit, c.State())
	assert.Equal(t, 0, c.Clicks())
	assert.Equal(t, fired, len(r.events), "reset fires nothing")

	c.Reset()
	assert.Equal(t, StateInit, c.State())
	assert.Equal(t, fired, len(r.events))

	// Thresholds and handlers survive; the idle period restarts at the next step
	assert.Equal(t, DefaultConfig(), c.Config())
	c.Step(false, ms(400))
	c.Step(false, ms(1400))
	assert.Equal(t, 0, r.count(EventIdle))
	c.Step(false, ms(1401))
	assert.Equal(t, 1, r.count(EventIdle))
}

func TestUnknownStateResets(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	r := recordAll(c)
	c.Step(false, ms(0))
	c.state = State("BOGUS")
	c.clicks = 5

	events := c.Step(true, ms(10))
	assert.Empty(t, events)
	assert.Empty(t, r.events)
	assert.Equal(t, StateInit, c.State())
	assert.Equal(t, 0, c.Clicks())
}

func TestPressedFor(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Step(false, ms(0))
	assert.Equal(t, time.Duration(0), c.PressedFor(ms(50)))

	c.Step(true, ms(100))
	assert.Equal(t, 200*time.Millisecond, c.PressedFor(ms(300)))

	c.Step(true, ms(1000)) // long press
	assert.Equal(t, 1000*time.Millisecond, c.PressedFor(ms(1100)))

	c.Step(false, ms(1200))
	assert.Equal(t, time.Duration(0), c.PressedFor(ms(1300)))
}

func TestNegativeThresholdsClamp(t *testing.T) {
	c := NewClassifier(Config{
		Debounce:       -10 * time.Millisecond,
		Click:          -1,
		LongPress:      -1,
		Idle:           -1,
		DuringInterval: -1,
	})
	cfg := c.Config()
	assert.Equal(t, -10*time.Millisecond, cfg.Debounce)
	assert.Zero(t, cfg.Click)
	assert.Zero(t, cfg.LongPress)
	assert.Zero(t, cfg.Idle)
	assert.Zero(t, cfg.DuringInterval)
}

func TestZeroWindowsAreMaximallyResponsive(t *testing.T) {
	c := NewClassifier(Config{})
	r := recordAll(c)

	c.Step(false, ms(0))
	c.Step(false, ms(1)) // idle after any rest
	assert.Equal(t, 1, r.count(EventIdle))

	c.Step(true, ms(2))
	c.Step(true, ms(3)) // any hold is a long press
	assert.True(t, c.IsLongPressed())
}
