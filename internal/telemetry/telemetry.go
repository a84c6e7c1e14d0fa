// Package telemetry publishes board events to MQTT. It is optional: the
// daemon exposes no network interface of its own, and an empty broker
// address selects the no-op publisher.
package telemetry

import (
	"encoding/json"
	"time"
)

// TopicEvents carries board state events (disk attach/detach, fan duty).
const TopicEvents = "penta/hat/events"

// TopicSystem carries daemon lifecycle events.
const TopicSystem = "penta/hat/system"

// EventType identifies a board event.
type EventType string

const (
	EventDiskAttached EventType = "DISK_ATTACHED"
	EventDiskDetached EventType = "DISK_DETACHED"
	EventFanDuty      EventType = "FAN_DUTY"
)

// Event is a board state event.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Bay and Device are set for disk events.
	Bay    int
	Device string

	// DutyPercent and TemperatureC are set for fan events.
	DutyPercent  int
	TemperatureC float64
}

// SystemEvent is a daemon lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM", "long-press", "hardware failure"
	Retained  bool
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a board event. Failure must not crash the process.
	Publish(event Event) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

type eventPayload struct {
	Timestamp    string   `json:"timestamp"`
	Event        string   `json:"event"`
	Bay          int      `json:"bay,omitempty"`
	Device       string   `json:"device,omitempty"`
	DutyPercent  *int     `json:"duty_percent,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// FormatPayload creates the JSON payload for a board event.
func FormatPayload(event Event) ([]byte, error) {
	p := eventPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Bay:       event.Bay,
		Device:    event.Device,
	}
	if event.Type == EventFanDuty {
		p.DutyPercent = &event.DutyPercent
		p.TemperatureC = &event.TemperatureC
	}
	return json.Marshal(p)
}

type systemPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	return json.Marshal(systemPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	})
}

// Nop is a Publisher that discards everything. Used when telemetry is
// disabled.
type Nop struct{}

func (Nop) Publish(Event) error             { return nil }
func (Nop) PublishSystem(SystemEvent) error { return nil }
func (Nop) Close() error                    { return nil }
