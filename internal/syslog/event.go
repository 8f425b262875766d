package syslog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// eventWriter is the output of Sink.Logger. zerolog hands it each event as
// a JSON object; the object is flattened into one line the same way
// LogEntry.Text flattens builder fields.
type eventWriter struct {
	sink *Sink
}

var _ zerolog.LevelWriter = eventWriter{}

func (w eventWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel never fails: undecodable events are counted as dropped.
func (w eventWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if !w.sink.Enabled(level) {
		return len(p), nil
	}

	record, err := decodeEvent(level, p)
	if err != nil {
		w.sink.drop(err)
		return len(p), nil
	}
	w.sink.Log(record)
	return len(p), nil
}

func decodeEvent(level zerolog.Level, p []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return Record{}, fmt.Errorf("failed to decode log event: %w", err)
	}

	entry := LogEntry{Level: level, Fields: make(map[string]interface{}, len(fields))}
	var caller string
	for k, v := range fields {
		switch k {
		case zerolog.LevelFieldName, zerolog.TimestampFieldName:
			// the kernel stamps and prefixes every record itself
		case zerolog.MessageFieldName:
			entry.Message = fieldText(v)
		case zerolog.ErrorFieldName:
			entry.ErrString = fieldText(v)
		case zerolog.CallerFieldName:
			caller = fieldText(v)
		default:
			entry.Fields[k] = fieldText(v)
		}
	}

	return Record{Level: level, Message: entry.Text(), Caller: caller}, nil
}

func fieldText(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
