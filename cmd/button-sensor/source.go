package main

import (
	"fmt"

	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gpio"
)

// source is an opened level source. injected is set for kinds whose level
// is pushed from outside (mqtt, http, keyboard); done is closed when the
// source asks the daemon to stop.
type source struct {
	reader   gpio.Reader
	injected *gpio.InjectedReader
	done     <-chan struct{}
}

func openSource(cfg config.SourceConfig) (*source, error) {
	switch cfg.Kind {
	case config.SourceGPIOCdev:
		r, err := gpio.NewLineReader(cfg.PinConfig())
		if err != nil {
			return nil, fmt.Errorf("open gpiocdev source: %w", err)
		}
		return &source{reader: r}, nil

	case config.SourceRPIO:
		r, err := gpio.NewRPIOReader(cfg.PinConfig())
		if err != nil {
			return nil, fmt.Errorf("open rpio source: %w", err)
		}
		return &source{reader: r}, nil

	case config.SourceMQTT, config.SourceHTTP:
		r := gpio.NewInjectedReader()
		return &source{reader: r, injected: r}, nil

	case config.SourceKeyboard:
		k, err := gpio.NewKeyboardReader(cfg.TTY)
		if err != nil {
			return nil, fmt.Errorf("open keyboard source: %w", err)
		}
		return &source{reader: k, injected: k.InjectedReader, done: k.Done()}, nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
