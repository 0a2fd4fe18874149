//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// LineReader is not available on non-Linux platforms.
type LineReader struct{}

// NewLineReader returns an error on non-Linux platforms.
func NewLineReader(PinConfig) (*LineReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *LineReader) Read() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *LineReader) Close() error {
	return nil
}

// RPIOReader is not available on non-Linux platforms.
type RPIOReader struct{}

// NewRPIOReader returns an error on non-Linux platforms.
func NewRPIOReader(PinConfig) (*RPIOReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RPIOReader) Read() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RPIOReader) Close() error {
	return nil
}

// KeyboardReader is not available on non-Linux platforms.
type KeyboardReader struct {
	*InjectedReader
}

// NewKeyboardReader returns an error on non-Linux platforms.
func NewKeyboardReader(string) (*KeyboardReader, error) {
	return nil, errUnsupported
}

// Done is never closed on non-Linux platforms.
func (k *KeyboardReader) Done() <-chan struct{} {
	return nil
}
