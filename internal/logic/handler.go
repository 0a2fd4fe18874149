package logic

// Handler receives classified events. Handlers run synchronously on the
// polling goroutine and must return promptly: timing guards are only
// re-evaluated on the next poll.
type Handler interface {
	Handle(Event)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(Event)

// Handle calls f(ev).
func (f HandlerFunc) Handle(ev Event) {
	f(ev)
}

// Func wraps a callback that takes no arguments.
func Func(fn func()) Handler {
	return HandlerFunc(func(Event) { fn() })
}

// ParamFunc wraps a callback that receives one stored opaque parameter.
func ParamFunc(fn func(param any), param any) Handler {
	return HandlerFunc(func(Event) { fn(param) })
}

// Clicks-of-interest ceilings used for early dispatch.
const (
	maxClicksSingle = 1
	maxClicksDouble = 2
	maxClicksMulti  = 100
)

// registry maps each event kind to at most one handler.
type registry map[EventType]Handler

func (r registry) set(t EventType, h Handler) {
	if h == nil {
		delete(r, t)
		return
	}
	r[t] = h
}

func (r registry) fire(ev Event) {
	if h, ok := r[ev.Type]; ok {
		h.Handle(ev)
	}
}

// maxClicks is the burst size at which counting can stop without waiting
// for the click window to expire.
func (r registry) maxClicks() int {
	if _, ok := r[EventMultiClick]; ok {
		return maxClicksMulti
	}
	if _, ok := r[EventDoubleClick]; ok {
		return maxClicksDouble
	}
	return maxClicksSingle
}
