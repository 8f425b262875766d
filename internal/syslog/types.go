package syslog

import (
	"sync"

	"github.com/rs/zerolog"
)

// Logger builds entries and hands them to a zerolog logger. Until a Sink is
// registered that logger writes to stderr; afterwards it is bound to the
// Sink and nothing else.
type Logger struct {
	mu   sync.RWMutex // Protects zlog
	zlog zerolog.Logger
}

// LogEntry is one record under construction. Its JSON form is what
// ParseLogEntry accepts from forwarding clients.
type LogEntry struct {
	Level     zerolog.Level          `json:"level"`
	Message   string                 `json:"message"`
	Hostname  string                 `json:"hostname,omitempty"`
	Err       error                  `json:"-"`
	ErrString string                 `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	logger    *Logger
}
