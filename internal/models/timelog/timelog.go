package timelog

import "time"

// TimeLog - неизменяемая запись журнала списанного времени.
type TimeLog struct {
	ID             int64     `json:"id" db:"id"`
	TaskID         int64     `json:"task_id" db:"task_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	LoggedByID     int64     `json:"logged_by_id" db:"logged_by_id"`
	SpentHours     float64   `json:"spent_hours" db:"spent_hours"`
	RemainingHours float64   `json:"remaining_hours" db:"remaining_hours"`
	Comment        string    `json:"comment" db:"comment"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Username string `json:"username" db:"username"`
	LoggedBy string `json:"logged_by" db:"logged_by"`
}

type Filter struct {
	TaskID     int64
	UserID     *int64
	LoggedByID *int64
	From       *time.Time
	To         *time.Time
	Ascending  bool
	Page       int
	PerPage    int
}

// Offset считает смещение для 1-индексированной страницы.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

type Page struct {
	Items      []*TimeLog `json:"time_logs"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

func NewPage(items []*TimeLog, page, perPage, total int) Page {
	if items == nil {
		items = []*TimeLog{}
	}
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Page{Items: items, Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}

// SummaryFilter: ColumnIDs == nil - без ограничения по области,
// пустой срез - область ничего не содержит.
type SummaryFilter struct {
	ColumnIDs []int64
	UserID    *int64
	From      *time.Time
	To        *time.Time
}

type SummaryRow struct {
	UserID          int64   `json:"user_id" db:"user_id"`
	Username        string  `json:"username" db:"username"`
	TotalSpentHours float64 `json:"total_spent_hours" db:"total_spent_hours"`
	LogCount        int     `json:"log_count" db:"log_count"`
}
