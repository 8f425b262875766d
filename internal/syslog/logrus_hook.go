package syslog

import (
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
)

// LogrusHook forwards logrus entries to a Sink. Attach it with
// logger.AddHook and point the logger's output at io.Discard to make the
// kernel log its only destination.
type LogrusHook struct {
	sink *Sink
}

func NewLogrusHook(s *Sink) LogrusHook {
	return LogrusHook{sink: s}
}

func (LogrusHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h LogrusHook) Fire(entry *logrus.Entry) error {
	level := logrusLevel(entry.Level)
	if !h.sink.Enabled(level) {
		return nil
	}

	var caller string
	if entry.Caller != nil {
		caller = entry.Caller.Function
	}
	h.sink.Log(Record{Level: level, Message: entry.Message, Caller: caller})

	// write errors are counted by the sink; logrus would print them to stderr
	return nil
}

func logrusLevel(level logrus.Level) zerolog.Level {
	switch level {
	case logrus.PanicLevel:
		return zerolog.PanicLevel
	case logrus.FatalLevel:
		return zerolog.FatalLevel
	case logrus.ErrorLevel:
		return zerolog.ErrorLevel
	case logrus.WarnLevel:
		return zerolog.WarnLevel
	case logrus.InfoLevel:
		return zerolog.InfoLevel
	case logrus.DebugLevel:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
