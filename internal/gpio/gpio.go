// Package gpio provides button level sources with hardware abstraction.
// The real implementations use the Linux GPIO character device or the
// Raspberry Pi memory-mapped registers.
// The injected and fake implementations run without hardware.
package gpio

import (
	"fmt"
	"strings"
)

// Reader reads the logical level of a button.
type Reader interface {
	// Read returns true while the button is pressed.
	// Pin polarity has already been applied.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pull selects the internal bias resistor of an input pin.
type Pull string

const (
	PullUp   Pull = "up"
	PullDown Pull = "down"
	PullNone Pull = "none"
)

// ParsePull parses a bias name from configuration.
func ParsePull(s string) (Pull, error) {
	switch p := Pull(strings.ToLower(strings.TrimSpace(s))); p {
	case PullUp, PullDown, PullNone:
		return p, nil
	case "":
		return PullUp, nil
	default:
		return "", fmt.Errorf("unknown pull %q (want up, down or none)", s)
	}
}

// PinConfig describes a hardware button input.
type PinConfig struct {
	Chip      string // gpiochip device name, cdev only
	Pin       int    // line offset (BCM numbering on a Pi)
	ActiveLow bool   // button connects the pin to ground when pressed
	Pull      Pull
}

// DefaultChip is the GPIO chip exposing the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// MaxRPIOPin is the highest pin number the register-mapped reader can address.
const MaxRPIOPin = 255

// levelFromRaw applies polarity to a raw pin value.
func levelFromRaw(raw int, activeLow bool) bool {
	if activeLow {
		return raw == 0
	}
	return raw != 0
}
