package bus

import (
	"sync"
	"time"

	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

// EventType labels the notifications flowing from the background goroutines
// to the foreground reactor.
type EventType string

const (
	EventTypeProcesses          EventType = "processes"
	EventTypeMonitorError       EventType = "monitor_error"
	EventTypeKillFeedback       EventType = "kill_feedback"
	EventTypeConfigReloaded     EventType = "config_reloaded"
	EventTypeConfigReloadFailed EventType = "config_reload_failed"
	EventTypeContainers         EventType = "containers"
	EventTypeServices           EventType = "services"
)

// Event is a single notification. Only the fields relevant to its Type are
// populated.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Snapshot   ports.Snapshot
	Feedback   kill.Feedback
	Config     *config.Config
	Containers map[uint16]string
	Services   map[string]struct{}
	Message    string
}

// ProcessesEvent wraps a fresh snapshot.
func ProcessesEvent(snap ports.Snapshot) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeProcesses, Snapshot: snap}
}

// MonitorErrorEvent wraps a transient scan failure.
func MonitorErrorEvent(err error) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeMonitorError, Message: err.Error()}
}

// FeedbackEvent wraps the result of a kill or service-stop command.
func FeedbackEvent(fb kill.Feedback) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeKillFeedback, Feedback: fb}
}

// ConfigReloadedEvent announces a successfully applied configuration.
func ConfigReloadedEvent(cfg config.Config) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeConfigReloaded, Config: &cfg}
}

// ConfigReloadFailedEvent announces a rejected configuration; the previous
// one stays live.
func ConfigReloadFailedEvent(err error) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeConfigReloadFailed, Message: err.Error()}
}

// ContainersEvent carries a refreshed port-to-container mapping.
func ContainersEvent(containers map[uint16]string) Event {
	return Event{Timestamp: time.Now(), Type: EventTypeContainers, Containers: containers}
}

// ServicesEvent carries the set of service-manager daemons currently
// running, so listeners they own can be labelled and spared from kill-all.
func ServicesEvent(names []string) Event {
	running := make(map[string]struct{}, len(names))
	for _, name := range names {
		running[name] = struct{}{}
	}
	return Event{Timestamp: time.Now(), Type: EventTypeServices, Services: running}
}

// Bus is the event side of the command bus: a buffered channel the reactor
// drains, plus a done latch that lets producers notice shutdown instead of
// blocking into a dead channel.
type Bus struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// New constructs a bus with a small event buffer.
func New() *Bus {
	return &Bus{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// Events exposes the reactor's inbound channel.
func (b *Bus) Events() <-chan Event {
	return b.events
}

// Done is closed when the bus shuts down.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Publish delivers an event to the reactor. It returns false once the bus
// has been closed; producers treat that as the signal to exit.
func (b *Bus) Publish(ev Event) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.events <- ev:
		return true
	case <-b.done:
		return false
	}
}

// Close releases every producer blocked in Publish and stops the reactor.
// Safe to call more than once.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}
