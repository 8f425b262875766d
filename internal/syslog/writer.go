package syslog

import (
	"github.com/rs/zerolog"
)

// LogWriter adapts a Sink to io.Writer at a fixed level, for callers that
// only know how to write lines (the standard library log package, child
// process output). Each Write call becomes one record.
type LogWriter struct {
	sink  *Sink
	level zerolog.Level
}

func NewLogWriter(s *Sink, level zerolog.Level) *LogWriter {
	return &LogWriter{sink: s, level: level}
}

// Write implements io.Writer. It always reports the whole of p as written;
// delivery failures are counted by the sink.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	w.sink.Log(Record{Level: w.level, Message: string(p)})
	return len(p), nil
}
