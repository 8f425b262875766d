package syslog

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sonroyaalmerol/kmsglog/internal/kmsg"
	"golang.org/x/sys/unix"
)

// Record is a single log call handed to the sink.
type Record struct {
	Level   zerolog.Level
	Message string
	Caller  string // not rendered
}

// Sink delivers records to the kernel log device. It satisfies
// zerolog.Hook, so a zerolog.Logger with a Sink attached feeds it every
// event that passes the logger's own level check.
type Sink struct {
	mu sync.Mutex // Serializes device writes
	w  kmsg.EntryWriter

	format  *Formatter
	level   atomic.Int32
	dropped atomic.Uint64
	diag    *diagnostics
}

var (
	_ zerolog.Hook    = (*Sink)(nil)
	_ zerolog.Sampler = (*Sink)(nil)
)

// NewSink builds a sink writing to w.
func NewSink(w kmsg.EntryWriter, opts Options) (*Sink, error) {
	var pid func() int
	if opts.WithPID {
		pid = unix.Getpid
	}
	return newSink(w, opts, pid, nil)
}

func newSink(w kmsg.EntryWriter, opts Options, pid func() int, diagOut io.Writer) (*Sink, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Sink{
		w:      w,
		format: NewFormatter(opts.Tag, pid, opts.MaxEntrySize, opts.Newlines),
		diag:   newDiagnostics(diagOut),
	}
	s.SetLevel(opts.MaxLevel)

	return s, nil
}

// Level returns the most verbose level the sink passes through.
func (s *Sink) Level() zerolog.Level {
	return zerolog.Level(s.level.Load())
}

// SetLevel changes the filter threshold for subsequent records.
func (s *Sink) SetLevel(level zerolog.Level) {
	s.level.Store(int32(level))
}

// Enabled reports whether a record at level would be written. NoLevel is
// filtered as Info, the level whose severity it is rendered at.
func (s *Sink) Enabled(level zerolog.Level) bool {
	threshold := s.Level()
	if level == zerolog.Disabled || threshold == zerolog.Disabled {
		return false
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return level >= threshold
}

// Log renders r and writes it to the device. Failures are counted and never
// reach the caller.
func (s *Sink) Log(r Record) {
	if !s.Enabled(r.Level) {
		return
	}

	sev, ok := SeverityFromLevel(r.Level)
	if !ok {
		return
	}

	entry, err := s.format.Render(sev, r.Message)
	if err != nil {
		s.drop(err)
		return
	}

	s.mu.Lock()
	err = s.w.WriteEntry(entry)
	s.mu.Unlock()

	if err != nil {
		s.drop(err)
	}
}

func (s *Sink) drop(err error) {
	total := s.dropped.Add(1)
	s.diag.dropped(err, total)
}

// Flush is a no-op: every write reaches the device before Log returns.
func (s *Sink) Flush() error {
	return nil
}

// Dropped returns how many records failed to render or write.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Run implements zerolog.Hook. Hooks only see the message, so fields on a
// hooked logger are not written; use Logger to keep them.
func (s *Sink) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	s.Log(Record{Level: level, Message: msg})
}

// Sample implements zerolog.Sampler. It lets the logger returned by Logger
// drop filtered events before any field is encoded, and it follows SetLevel.
func (s *Sink) Sample(level zerolog.Level) bool {
	return s.Enabled(level)
}

// Logger returns a zerolog.Logger whose events go only to s. Event fields
// are appended to the message as sorted key=value pairs.
func (s *Sink) Logger() zerolog.Logger {
	return zerolog.New(eventWriter{sink: s}).Sample(s)
}
