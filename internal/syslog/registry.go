package syslog

import (
	"errors"
	"sync"
	"sync/atomic"

	zlog "github.com/rs/zerolog/log"
)

// ErrAlreadyInitialized is returned when a sink is already registered.
var ErrAlreadyInitialized = errors.New("kernel log sink already initialized")

var (
	registerMu sync.Mutex
	active     atomic.Pointer[Sink]
)

// Register makes s the process-wide sink and points the zerolog global
// logger and L at it. It succeeds at most once per process.
func Register(s *Sink) error {
	registerMu.Lock()
	defer registerMu.Unlock()

	if active.Load() != nil {
		return ErrAlreadyInitialized
	}
	register(s)
	return nil
}

// registerMu must be held.
func register(s *Sink) {
	active.Store(s)

	logger := s.Logger()
	zlog.Logger = logger
	L.bind(logger)
}

// Active returns the registered sink, or nil before registration.
func Active() *Sink {
	return active.Load()
}
