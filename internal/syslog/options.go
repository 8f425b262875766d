package syslog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sonroyaalmerol/kmsglog/internal/kmsg"
)

// DefaultMaxEntrySize is the largest entry, trailing newline included, that
// current kernels accept on /dev/kmsg without EINVAL.
const DefaultMaxEntrySize = 976

// minEntrySize leaves room for "<D>", the separator, one message byte and
// the newline.
const minEntrySize = 6

// ErrInvalidOptions is returned for options a sink cannot be built from.
var ErrInvalidOptions = errors.New("invalid sink options")

// NewlinePolicy selects what happens to line breaks inside a message.
type NewlinePolicy int

const (
	// NewlineEscape rewrites LF and CR as the two-character sequences \n and \r.
	NewlineEscape NewlinePolicy = iota
	// NewlineTruncate keeps the first line only.
	NewlineTruncate
	// NewlineReject drops the record.
	NewlineReject
)

func (p NewlinePolicy) String() string {
	switch p {
	case NewlineEscape:
		return "escape"
	case NewlineTruncate:
		return "truncate"
	case NewlineReject:
		return "reject"
	default:
		return fmt.Sprintf("newline-policy(%d)", int(p))
	}
}

// ParseNewlinePolicy parses the names returned by NewlinePolicy.String.
func ParseNewlinePolicy(s string) (NewlinePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "escape":
		return NewlineEscape, nil
	case "truncate":
		return NewlineTruncate, nil
	case "reject":
		return NewlineReject, nil
	default:
		return 0, fmt.Errorf("invalid newline policy %q", s)
	}
}

// Options configures a Sink. Everything except MaxLevel is fixed once the
// sink is built.
type Options struct {
	DevicePath   string
	MaxLevel     zerolog.Level
	WithPID      bool
	Tag          string
	MaxEntrySize int
	Newlines     NewlinePolicy
}

func DefaultOptions() Options {
	return Options{
		DevicePath:   kmsg.DefaultPath,
		MaxLevel:     zerolog.TraceLevel,
		MaxEntrySize: DefaultMaxEntrySize,
		Newlines:     NewlineEscape,
	}
}

// Validate reports the first problem with o, wrapped in ErrInvalidOptions.
func (o Options) Validate() error {
	if strings.ContainsAny(o.Tag, "[]<>: \t\r\n") {
		return fmt.Errorf("%w: tag %q contains reserved characters", ErrInvalidOptions, o.Tag)
	}

	// room for the tag and the largest pid as well
	if o.MaxEntrySize < minEntrySize+len(o.Tag)+12 {
		return fmt.Errorf("%w: max entry size %d is too small", ErrInvalidOptions, o.MaxEntrySize)
	}

	switch o.Newlines {
	case NewlineEscape, NewlineTruncate, NewlineReject:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOptions, o.Newlines)
	}

	return nil
}
