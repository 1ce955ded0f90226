package task

import (
	"time"
)

type Task struct {
	ID            int64      `json:"id" db:"id"`
	Code          string     `json:"code" db:"code"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Priority      Priority   `json:"priority" db:"priority"`
	EstimatedTime float64    `json:"estimated_time" db:"estimated_time"`
	RemainingTime float64    `json:"remaining_time" db:"remaining_time"`
	SpentTime     float64    `json:"spent_time" db:"spent_time"`
	AuthorID      int64      `json:"author_id" db:"author_id"`
	AssigneeID    *int64     `json:"assignee_id" db:"assignee_id"`
	ColumnID      int64      `json:"column_id" db:"column_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	StartedAt     *time.Time `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at" db:"completed_at"`

	// только для чтения, заполняются join-ом
	Status   string `json:"status" db:"status"`
	Author   string `json:"author" db:"author"`
	Assignee string `json:"assignee" db:"assignee"`
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

// IsAssignee сообщает, назначена ли задача на пользователя.
func (t *Task) IsAssignee(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// Filter - фильтры списка задач. nil означает "не применять".
type Filter struct {
	Priority    *Priority
	AuthorID    *int64
	AssigneeID  *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
