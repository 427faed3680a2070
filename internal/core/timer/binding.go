package timer

import (
	"context"

	"pomodesk/internal/core/model"
)

// CompleteFunc is supplied by the task subsystem when a task is attached. The
// timer calls it with the bound task ID when the task is released.
type CompleteFunc func(ctx context.Context, taskID string, update model.StatusUpdate) (model.Task, error)

// BoundTask is the display metadata of the task attached to the timer.
type BoundTask struct {
	ID          string
	Name        string
	Description string
}

// binding holds at most one attached task. Guarded by Engine.mu.
type binding struct {
	task       *BoundTask
	onComplete CompleteFunc
}

// attach replaces the current binding without notifying the replaced task.
func (current *binding) attach(task BoundTask, onComplete CompleteFunc) {
	current.task = &task
	current.onComplete = onComplete
}

// release clears the binding and returns what was bound.
func (current *binding) release() (BoundTask, CompleteFunc, bool) {
	if current.task == nil {
		current.onComplete = nil
		return BoundTask{}, nil, false
	}
	task := *current.task
	hook := current.onComplete
	current.task = nil
	current.onComplete = nil
	return task, hook, true
}

func (current *binding) snapshot() *BoundTask {
	if current.task == nil {
		return nil
	}
	task := *current.task
	return &task
}
