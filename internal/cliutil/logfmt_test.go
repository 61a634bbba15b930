package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

func TestNewLogRecordLevels(t *testing.T) {
	cases := []struct {
		name  string
		event bus.Event
		level string
	}{
		{"processes", bus.ProcessesEvent(ports.Snapshot{{Port: 3000, Pid: 42}}), "info"},
		{"monitor error", bus.MonitorErrorEvent(errors.New("scan failed")), "error"},
		{"kill warning", bus.FeedbackEvent(kill.Warningf("node was already stopped.")), "warn"},
		{"kill error", bus.FeedbackEvent(kill.Errorf("permission denied")), "error"},
		{"reload failed", bus.ConfigReloadFailedEvent(errors.New("yaml: line 3")), "error"},
		{"services", bus.ServicesEvent([]string{"redis"}), "info"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := NewLogRecord(tc.event)
			if record.Level != tc.level {
				t.Fatalf("level: got %q, want %q", record.Level, tc.level)
			}
			if record.Event != string(tc.event.Type) {
				t.Fatalf("event label: %q", record.Event)
			}
		})
	}
}

func TestNewLogRecordListenerCount(t *testing.T) {
	snap := ports.Snapshot{
		{Port: 3000, Pid: 42, Command: "node"},
		{Port: 8080, Pid: 43, Command: "python"},
	}
	record := NewLogRecord(bus.ProcessesEvent(snap))
	if record.Listeners != 2 {
		t.Fatalf("listeners: %d", record.Listeners)
	}
	if record.Message != "2 listeners" {
		t.Fatalf("message: %q", record.Message)
	}
}

func TestEncodeLogEventFillsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	event := bus.Event{Type: bus.EventTypeMonitorError, Message: "boom"}
	EncodeLogEvent(enc, &bytes.Buffer{}, event)

	var record LogRecord
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Timestamp.IsZero() {
		t.Fatal("timestamp not filled")
	}
	if time.Since(record.Timestamp) > time.Minute {
		t.Fatalf("timestamp implausible: %s", record.Timestamp)
	}
}

func TestLogRecordRedactsSecrets(t *testing.T) {
	event := bus.FeedbackEvent(kill.Errorf("reload failed: REDIS_PASSWORD=hunter2 invalid"))
	record := NewLogRecord(event)
	if strings.Contains(record.Message, "hunter2") {
		t.Fatalf("secret leaked: %q", record.Message)
	}
}
