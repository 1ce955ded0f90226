package task

import (
	"time"
)

// TaskOption - одно независимое изменение поля задачи.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithPriority(priority Priority) TaskOption {
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithEstimatedTime(hours float64) TaskOption {
	return func(task *Task) {
		task.EstimatedTime = hours
	}
}

func WithRemainingTime(hours float64) TaskOption {
	return func(task *Task) {
		task.RemainingTime = hours
	}
}

func WithSpentTime(hours float64) TaskOption {
	return func(task *Task) {
		task.SpentTime = hours
	}
}

// WithAssignee с nil снимает исполнителя.
func WithAssignee(userID *int64) TaskOption {
	return func(task *Task) {
		if userID == nil {
			task.AssigneeID = nil
			return
		}
		id := *userID
		task.AssigneeID = &id
	}
}

// WithColumn переносит задачу и один раз проставляет started_at / completed_at.
func WithColumn(columnID int64, started, completed bool, now time.Time) TaskOption {
	return func(task *Task) {
		task.ColumnID = columnID
		if started && task.StartedAt == nil {
			ts := now
			task.StartedAt = &ts
		}
		if completed && task.CompletedAt == nil {
			ts := now
			task.CompletedAt = &ts
		}
	}
}

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
