//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LineReader reads a button from the Linux GPIO character device.
type LineReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewLineReader requests the configured line as an input.
// Polarity is handled by the kernel, so Value already reports the logical level.
func NewLineReader(cfg PinConfig) (*LineReader, error) {
	name := cfg.Chip
	if name == "" {
		name = DefaultChip
	}
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("button-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, biasOption(cfg.Pull)}
	if cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := chip.RequestLine(cfg.Pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", cfg.Pin, err)
	}

	return &LineReader{chip: chip, line: line}, nil
}

func biasOption(p Pull) gpiocdev.LineBias {
	switch p {
	case PullDown:
		return gpiocdev.WithPullDown
	case PullNone:
		return gpiocdev.WithBiasDisabled
	default:
		return gpiocdev.WithPullUp
	}
}

// Read returns true while the button is pressed.
func (r *LineReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return v != 0, nil
}

// Close releases GPIO resources.
// Reconfigures the line to input with pull-down (matching Pi boot defaults)
// before closing to leave the pin in a clean state.
func (r *LineReader) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	return errors.Join(errs...)
}
