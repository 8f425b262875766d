//go:build linux

package syslog

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sonroyaalmerol/kmsglog/internal/kmsg"
)

// Init opens /dev/kmsg and registers a sink that passes every level.
func Init() error {
	return InitWithOptions(DefaultOptions())
}

// InitWithLevel is Init with records more verbose than maxLevel discarded
// before they are formatted.
func InitWithLevel(maxLevel zerolog.Level) error {
	opts := DefaultOptions()
	opts.MaxLevel = maxLevel
	return InitWithOptions(opts)
}

// InitWithOptions opens the device named by opts and registers a sink on
// it. The device is not touched when a sink is already registered. The
// handle stays open for the rest of the process.
func InitWithOptions(opts Options) error {
	registerMu.Lock()
	defer registerMu.Unlock()

	if active.Load() != nil {
		return ErrAlreadyInitialized
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	path := opts.DevicePath
	if path == "" {
		path = kmsg.DefaultPath
	}

	dev, err := kmsg.Open(path)
	if err != nil {
		return fmt.Errorf("failed to initialize kernel log: %w", err)
	}

	sink, err := NewSink(dev, opts)
	if err != nil {
		_ = dev.Close()
		return err
	}

	register(sink)
	return nil
}
