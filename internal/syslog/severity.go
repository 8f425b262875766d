package syslog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Severity is a syslog severity as understood by the kernel log device.
// Lower values are more urgent.
type Severity uint8

const (
	Emergency Severity = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
)

var severityNames = [...]string{
	Emergency: "emerg",
	Alert:     "alert",
	Critical:  "crit",
	Error:     "err",
	Warning:   "warning",
	Notice:    "notice",
	Info:      "info",
	Debug:     "debug",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Priority returns the ASCII digit written inside the <> prefix.
func (s Severity) Priority() byte {
	return '0' + byte(s&7)
}

// Level returns the facade level that maps onto s. Emergency has no facade
// level of its own and shares Panic with Alert.
func (s Severity) Level() zerolog.Level {
	switch s {
	case Emergency, Alert:
		return zerolog.PanicLevel
	case Critical:
		return zerolog.FatalLevel
	case Error:
		return zerolog.ErrorLevel
	case Warning:
		return zerolog.WarnLevel
	case Notice:
		return zerolog.InfoLevel
	case Info:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SeverityFromLevel maps a facade level onto a Severity. Disabled and
// unknown levels report false. Nothing maps to Emergency, so
// Emergency.Level() comes back as Alert.
func SeverityFromLevel(level zerolog.Level) (Severity, bool) {
	switch level {
	case zerolog.PanicLevel:
		return Alert, true
	case zerolog.FatalLevel:
		return Critical, true
	case zerolog.ErrorLevel:
		return Error, true
	case zerolog.WarnLevel:
		return Warning, true
	case zerolog.InfoLevel, zerolog.NoLevel:
		return Notice, true
	case zerolog.DebugLevel:
		return Info, true
	case zerolog.TraceLevel:
		return Debug, true
	default:
		return 0, false
	}
}

// ParseLevel accepts zerolog level names plus the syslog spellings used in
// config files ("warning", "err", "crit").
func ParseLevel(s string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return zerolog.NoLevel, fmt.Errorf("invalid level %q", s)
	case "warning":
		return zerolog.WarnLevel, nil
	case "err":
		return zerolog.ErrorLevel, nil
	case "crit", "critical":
		return zerolog.FatalLevel, nil
	case "alert":
		return zerolog.PanicLevel, nil
	case "off", "none":
		return zerolog.Disabled, nil
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid level %q: %w", s, err)
	}
	return level, nil
}
