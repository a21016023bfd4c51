package events

import "time"

// EventType identifies the kind of event being published.
type EventType string

const (
	// Auth events
	LoginSucceeded  EventType = "login_succeeded"
	LoginFailed     EventType = "login_failed"
	PasswordChanged EventType = "password_changed"
	FactoryReset    EventType = "factory_reset"

	// Config events
	ConfigUpdated          EventType = "config_updated"
	ServicePasswordUpdated EventType = "service_password_updated"

	// Restart task events
	RestartQueued    EventType = "restart_queued"
	RestartCompleted EventType = "restart_completed"
	RestartFailed    EventType = "restart_failed"
)

// Severity indicates the urgency of an event.
type Severity int

const (
	SeverityInfo     Severity = 0
	SeverityWarning  Severity = 1
	SeverityCritical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Event is the payload published through the bus.
type Event struct {
	Type      EventType         `json:"type"`
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	TaskID    string            `json:"task_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
