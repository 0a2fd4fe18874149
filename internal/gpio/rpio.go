//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOReader reads a button through the Raspberry Pi GPIO registers
// (/dev/gpiomem). Use it on older kernels without a usable character device.
type RPIOReader struct {
	pin       rpio.Pin
	activeLow bool
}

// NewRPIOReader maps the GPIO registers and configures the pin as an input.
func NewRPIOReader(cfg PinConfig) (*RPIOReader, error) {
	if cfg.Pin < 0 || cfg.Pin > MaxRPIOPin {
		return nil, fmt.Errorf("rpio pin %d out of range 0-%d", cfg.Pin, MaxRPIOPin)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}

	pin := rpio.Pin(cfg.Pin)
	pin.Input()
	switch cfg.Pull {
	case PullDown:
		pin.PullDown()
	case PullNone:
		pin.PullOff()
	default:
		pin.PullUp()
	}

	return &RPIOReader{pin: pin, activeLow: cfg.ActiveLow}, nil
}

// Read returns true while the button is pressed.
func (r *RPIOReader) Read() (bool, error) {
	return levelFromRaw(int(r.pin.Read()), r.activeLow), nil
}

// Close restores the Pi boot default pull-down and unmaps the registers.
func (r *RPIOReader) Close() error {
	r.pin.PullDown()
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio memory: %w", err)
	}
	return nil
}
