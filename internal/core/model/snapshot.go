package model

import "time"

// Snapshot is the persisted representation of timer state at a point in time.
type Snapshot struct {
	Phase                 Phase
	RemainingSeconds      int
	Running               bool
	CompletedWorkSessions int
	SavedAt               time.Time
}

// FreshSnapshot returns the default state: work phase, full duration, paused.
func FreshSnapshot(durations DurationTable) Snapshot {
	return Snapshot{
		Phase:            PhaseWork,
		RemainingSeconds: durations.Nominal(PhaseWork),
	}
}

// Task statuses understood by the local task store.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether status is one the task store accepts.
func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task is a unit of work that can be bound to the timer.
type Task struct {
	ID          string
	Name        string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StatusUpdate is the payload sent to the task subsystem when a bound task is released.
type StatusUpdate struct {
	Status string
}
