package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

// LogRecord represents a structured log event ready for JSON encoding.
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Event     string    `json:"event"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
	Listeners int       `json:"listeners,omitempty"`
}

// NewLogRecord converts a bus event into a structured log record.
func NewLogRecord(event bus.Event) LogRecord {
	record := LogRecord{
		Timestamp: event.Timestamp,
		Event:     string(event.Type),
		Level:     "info",
	}
	switch event.Type {
	case bus.EventTypeProcesses:
		record.Listeners = len(event.Snapshot)
		record.Message = fmt.Sprintf("%d listeners", len(event.Snapshot))
	case bus.EventTypeMonitorError, bus.EventTypeConfigReloadFailed:
		record.Level = "error"
		record.Message = RedactSecrets(event.Message)
	case bus.EventTypeKillFeedback:
		record.Level = feedbackLevel(event.Feedback)
		record.Message = RedactSecrets(event.Feedback.Message)
	case bus.EventTypeConfigReloaded:
		record.Message = "configuration reloaded"
	case bus.EventTypeContainers:
		record.Message = fmt.Sprintf("%d container ports mapped", len(event.Containers))
	case bus.EventTypeServices:
		record.Message = fmt.Sprintf("%d services running", len(event.Services))
	default:
		record.Message = RedactSecrets(event.Message)
	}
	return record
}

func feedbackLevel(fb kill.Feedback) string {
	switch fb.Severity {
	case kill.SeverityError:
		return "error"
	case kill.SeverityWarning:
		return "warn"
	default:
		return "info"
	}
}

// EncodeLogEvent encodes a log event to JSON, reporting errors to stderr if needed.
func EncodeLogEvent(enc *json.Encoder, stderr io.Writer, event bus.Event) {
	if enc == nil {
		return
	}
	record := NewLogRecord(event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}
