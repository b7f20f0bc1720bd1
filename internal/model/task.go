package model

import "time"

// TaskStatus is the independently owned task lifecycle. The automated
// pipeline only ever reaches done; stuck and cancelled are operator-driven.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusStuck      TaskStatus = "stuck"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// CanTransition reports whether the status may move to next.
// new → in_progress → done, new|in_progress → stuck, stuck → in_progress|done,
// any → cancelled.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if next == TaskStatusCancelled {
		return s != TaskStatusCancelled
	}
	switch s {
	case TaskStatusNew:
		return next == TaskStatusInProgress || next == TaskStatusDone || next == TaskStatusStuck
	case TaskStatusInProgress:
		return next == TaskStatusDone || next == TaskStatusStuck
	case TaskStatusStuck:
		return next == TaskStatusInProgress || next == TaskStatusDone
	}
	return false
}

// IsOpen reports whether the task is still eligible for automatic completion
// detection. Stuck tasks stay open: the assignee reporting done resolves them
// like any other.
func (s TaskStatus) IsOpen() bool {
	return s != TaskStatusDone && s != TaskStatusCancelled
}

// Task is derived from a TopicRecord classified as a task. SourceMessageID
// references the unit's first message; CompletionMessageID is stamped by the
// completion detector when a later message from the assignee closes it.
type Task struct {
	ID            int64
	TopicRecordID *int64
	ChannelID     *int64
	Summary       string
	AssignedTo    *string
	AssignedBy    *string
	Priority      Priority
	Deadline      *time.Time
	DeadlineText  *string
	Status        TaskStatus

	SourceMessageID     *int64
	CompletionMessageID *int64
	CompletedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
