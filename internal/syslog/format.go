package syslog

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMultiline is returned by Render under NewlineReject.
var ErrMultiline = errors.New("message spans multiple lines")

// Formatter renders records into the kernel message wire format:
//
//	<D>[tag][[pid]] message\n
//
// D is the single priority digit. The pid segment is present only when a
// pid source is set; it is omitted entirely, never rendered empty.
type Formatter struct {
	tag      string
	pid      func() int
	maxSize  int
	newlines NewlinePolicy
}

// NewFormatter builds a Formatter. pid may be nil to disable enrichment.
func NewFormatter(tag string, pid func() int, maxSize int, newlines NewlinePolicy) *Formatter {
	return &Formatter{
		tag:      tag,
		pid:      pid,
		maxSize:  maxSize,
		newlines: newlines,
	}
}

// Render returns one complete entry for msg at severity sev. The entry is
// never longer than the formatter's max size and always ends in exactly one
// newline.
func (f *Formatter) Render(sev Severity, msg string) ([]byte, error) {
	msg = strings.TrimRight(msg, "\r\n")
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		switch f.newlines {
		case NewlineReject:
			return nil, ErrMultiline
		case NewlineTruncate:
			msg = msg[:i]
		}
	}

	buf := make([]byte, 0, min(f.maxSize, len(f.tag)+len(msg)+16))
	buf = append(buf, '<', sev.Priority(), '>')
	buf = append(buf, f.tag...)
	if f.pid != nil {
		buf = append(buf, '[')
		buf = strconv.AppendInt(buf, int64(f.pid()), 10)
		buf = append(buf, ']')
	}
	buf = append(buf, ' ')

	buf = appendMessage(buf, msg, f.maxSize-len(buf)-1)
	buf = append(buf, '\n')

	return buf, nil
}

// appendMessage appends msg with CR and LF escaped as \r and \n. It stops
// before the first rune or escape sequence that would take it past room
// bytes, so neither is ever split.
func appendMessage(buf []byte, msg string, room int) []byte {
	for len(msg) > 0 {
		_, size := utf8.DecodeRuneInString(msg)
		chunk := msg[:size]
		switch chunk {
		case "\n":
			chunk = `\n`
		case "\r":
			chunk = `\r`
		}
		if len(chunk) > room {
			break
		}
		buf = append(buf, chunk...)
		room -= len(chunk)
		msg = msg[size:]
	}
	return buf
}
