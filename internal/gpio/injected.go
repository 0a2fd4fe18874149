package gpio

import "sync/atomic"

// InjectedReader returns a level supplied by software (remote control, a test
// harness, the keyboard). Set may be called from any goroutine; Read is
// called from the poll loop.
type InjectedReader struct {
	level atomic.Bool
}

// NewInjectedReader creates a reader that starts released.
func NewInjectedReader() *InjectedReader {
	return &InjectedReader{}
}

// Read returns the last injected level.
func (r *InjectedReader) Read() (bool, error) {
	return r.level.Load(), nil
}

// Set injects a level.
func (r *InjectedReader) Set(pressed bool) {
	r.level.Store(pressed)
}

// Press injects the pressed level.
func (r *InjectedReader) Press() {
	r.Set(true)
}

// Release injects the released level.
func (r *InjectedReader) Release() {
	r.Set(false)
}

// Toggle flips the injected level and returns the new one.
func (r *InjectedReader) Toggle() bool {
	for {
		old := r.level.Load()
		if r.level.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Close is a no-op.
func (r *InjectedReader) Close() error {
	return nil
}
