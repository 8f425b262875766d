package syslog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Global logger instance. It falls back to stderr until a Sink is registered.
var L = newLogger(zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	NoColor:    true,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger())

func newLogger(zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog}
}

func (l *Logger) bind(zlog zerolog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog = zlog
}

func (l *Logger) entry(level zerolog.Level) *LogEntry {
	return &LogEntry{
		Level:  level,
		Fields: make(map[string]interface{}),
		logger: l,
	}
}

// WithLevel creates a new LogEntry at an arbitrary level.
func (l *Logger) WithLevel(level zerolog.Level) *LogEntry {
	return l.entry(level)
}

// Error creates a new error-level LogEntry.
func (l *Logger) Error(err error) *LogEntry {
	e := l.entry(zerolog.ErrorLevel)
	e.Err = err
	return e
}

// Warn creates a new warning-level LogEntry.
func (l *Logger) Warn() *LogEntry {
	return l.entry(zerolog.WarnLevel)
}

// Info creates a new info-level LogEntry.
func (l *Logger) Info() *LogEntry {
	return l.entry(zerolog.InfoLevel)
}

// Debug creates a new debug-level LogEntry.
func (l *Logger) Debug() *LogEntry {
	return l.entry(zerolog.DebugLevel)
}

// Trace creates a new trace-level LogEntry.
func (l *Logger) Trace() *LogEntry {
	return l.entry(zerolog.TraceLevel)
}

// WithMessage sets the log message.
func (e *LogEntry) WithMessage(msg string) *LogEntry {
	e.Message = msg
	return e
}

// WithJSON merges the fields of a JSON object. Input that is not a JSON
// object becomes the message instead.
func (e *LogEntry) WithJSON(msg string) *LogEntry {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(msg), &parsed); err == nil {
		for k, v := range parsed {
			e.Fields[k] = v
		}
	} else {
		e.Message = msg
	}
	return e
}

// WithField adds one key-value pair to the LogEntry.
func (e *LogEntry) WithField(key string, value interface{}) *LogEntry {
	e.Fields[key] = value
	return e
}

// WithFields adds multiple key-value pairs to the LogEntry.
func (e *LogEntry) WithFields(fields map[string]interface{}) *LogEntry {
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// Write emits the entry as a single line. Level filtering happens in the
// bound zerolog logger, so a filtered entry is never rendered.
func (e *LogEntry) Write() {
	e.logger.mu.RLock()
	defer e.logger.mu.RUnlock()

	event := e.logger.zlog.WithLevel(e.Level)
	if event == nil {
		return
	}
	event.Msg(e.Text())
}

// Text flattens the entry into the single-line message the sink receives:
// the message, then host, then fields sorted by key, then the error.
func (e *LogEntry) Text() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if e.Hostname != "" {
		writePair(&b, "host", e.Hostname)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writePair(&b, k, fmt.Sprint(e.Fields[k]))
	}

	switch {
	case e.Err != nil:
		writePair(&b, "error", e.Err.Error())
	case e.ErrString != "":
		writePair(&b, "error", e.ErrString)
	}

	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')
	if value == "" || strings.ContainsAny(value, " \t\r\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(value)
}

// UnmarshalJSON accepts the level as any name ParseLevel understands.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	type alias LogEntry
	aux := struct {
		*alias
		Level string `json:"level"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Level == "" {
		e.Level = zerolog.InfoLevel
		return nil
	}
	level, err := ParseLevel(aux.Level)
	if err != nil {
		return err
	}
	e.Level = level
	return nil
}

// ParseLogEntry decodes one JSON entry, as sent by forwarding clients, and
// binds it to L.
func ParseLogEntry(body io.Reader) (*LogEntry, error) {
	var entry LogEntry
	if err := json.NewDecoder(body).Decode(&entry); err != nil {
		return nil, err
	}
	entry.logger = L
	if entry.Fields == nil {
		entry.Fields = make(map[string]interface{})
	}
	if entry.ErrString != "" {
		entry.Err = errors.New(entry.ErrString)
	}
	return &entry, nil
}

// ParseAndLogEntry parses a JSON entry and writes it through L.
func ParseAndLogEntry(body io.Reader) error {
	entry, err := ParseLogEntry(body)
	if err != nil {
		return err
	}
	entry.Write()
	return nil
}
