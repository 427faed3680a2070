package timer

import (
	"time"

	"pomodesk/internal/core/model"
)

// EventType defines the type of timer event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventProgress      EventType = "progress"
	EventPhaseComplete EventType = "phase_complete"
	EventTaskDetached  EventType = "task_detached"
	EventTaskUpdated   EventType = "task_updated"
	EventHookFailed    EventType = "hook_failed"
)

// Event represents a timer update for observers.
type Event struct {
	Type                  EventType
	Phase                 model.Phase
	Remaining             time.Duration
	Progress              float64
	Running               bool
	CompletedWorkSessions int

	// Phase completion details.
	CompletedPhase model.Phase
	Elapsed        time.Duration
	Skipped        bool

	// Task binding details.
	TaskID   string
	TaskName string
	Status   string

	Message string
	At      time.Time
}
