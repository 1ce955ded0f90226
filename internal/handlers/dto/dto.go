package dto

import (
	"time"

	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
	"kanbanTracker/internal/models/user"
	"kanbanTracker/internal/service"
)

type CreateTaskRequest struct {
	BoardID       int64   `json:"board_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Priority      string  `json:"priority"`
	AssigneeID    *int64  `json:"assignee_id"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (r CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		BoardID:       r.BoardID,
		Title:         r.Title,
		Description:   r.Description,
		Priority:      task.Priority(r.Priority),
		AssigneeID:    r.AssigneeID,
		EstimatedTime: r.EstimatedTime,
	}
}

// UpdateTaskRequest: null у assignee_id снимает исполнителя, у остальных
// полей null равносилен отсутствию.
type UpdateTaskRequest struct {
	Title         Optional[string]  `json:"title"`
	Description   Optional[string]  `json:"description"`
	Priority      Optional[string]  `json:"priority"`
	ColumnID      Optional[int64]   `json:"column_id"`
	AssigneeID    Optional[int64]   `json:"assignee_id"`
	EstimatedTime Optional[float64] `json:"estimated_time"`
	RemainingTime Optional[float64] `json:"remaining_time"`
	SpentTime     Optional[float64] `json:"spent_time"`
}

func (r UpdateTaskRequest) Input() service.UpdateTaskInput {
	in := service.UpdateTaskInput{
		Title:         r.Title.Ptr(),
		Description:   r.Description.Ptr(),
		ColumnID:      r.ColumnID.Ptr(),
		AssigneeSet:   r.AssigneeID.Set,
		AssigneeID:    r.AssigneeID.Ptr(),
		EstimatedTime: r.EstimatedTime.Ptr(),
		RemainingTime: r.RemainingTime.Ptr(),
		SpentTime:     r.SpentTime.Ptr(),
	}
	if p := r.Priority.Ptr(); p != nil {
		priority := task.Priority(*p)
		in.Priority = &priority
	}
	return in
}

type LogTimeRequest struct {
	SpentHours     float64  `json:"spent_hours"`
	RemainingHours *float64 `json:"remaining_hours"`
	Comment        string   `json:"comment"`
	UserID         *int64   `json:"user_id"`
}

func (r LogTimeRequest) Input() service.LogTimeInput {
	return service.LogTimeInput{
		SpentHours:     r.SpentHours,
		RemainingHours: r.RemainingHours,
		Comment:        r.Comment,
		UserID:         r.UserID,
	}
}

type EstimateRequest struct {
	EstimatedHours *float64 `json:"estimated_hours"`
	RemainingHours *float64 `json:"remaining_hours"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type CreateBoardRequest struct {
	Name      string `json:"name"`
	ProjectID int64  `json:"project_id"`
}

type CreateColumnRequest struct {
	Name    string `json:"name"`
	BoardID int64  `json:"board_id"`
	Role    string `json:"role"`
}

type TaskResponse struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	EstimatedTime float64    `json:"estimated_time"`
	RemainingTime float64    `json:"remaining_time"`
	SpentTime     float64    `json:"spent_time"`
	Author        *string    `json:"author"`
	AuthorID      int64      `json:"author_id"`
	Assignee      *string    `json:"assignee"`
	AssigneeID    *int64     `json:"assignee_id"`
	ColumnID      int64      `json:"column_id"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Code:          t.Code,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		EstimatedTime: t.EstimatedTime,
		RemainingTime: t.RemainingTime,
		SpentTime:     t.SpentTime,
		Author:        nullable(t.Author),
		AuthorID:      t.AuthorID,
		Assignee:      nullable(t.Assignee),
		AssigneeID:    t.AssigneeID,
		ColumnID:      t.ColumnID,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		StartedAt:     t.StartedAt,
		CompletedAt:   t.CompletedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type TimeLogResponse struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"task_id"`
	UserID         int64     `json:"user_id"`
	Username       *string   `json:"username"`
	LoggedByID     int64     `json:"logged_by_id"`
	LoggedBy       *string   `json:"logged_by"`
	SpentHours     float64   `json:"spent_hours"`
	RemainingHours float64   `json:"remaining_hours"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromTimeLog(l *timelog.TimeLog) TimeLogResponse {
	return TimeLogResponse{
		ID:             l.ID,
		TaskID:         l.TaskID,
		UserID:         l.UserID,
		Username:       nullable(l.Username),
		LoggedByID:     l.LoggedByID,
		LoggedBy:       nullable(l.LoggedBy),
		SpentHours:     l.SpentHours,
		RemainingHours: l.RemainingHours,
		Comment:        l.Comment,
		CreatedAt:      l.CreatedAt,
	}
}

type TimeLogPageResponse struct {
	TimeLogs   []TimeLogResponse `json:"time_logs"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

func FromTimeLogPage(p timelog.Page) TimeLogPageResponse {
	logs := make([]TimeLogResponse, len(p.Items))
	for i, l := range p.Items {
		logs[i] = FromTimeLog(l)
	}
	return TimeLogPageResponse{
		TimeLogs:   logs,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func FromUserList(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

type ColumnResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	BoardID   int64     `json:"board_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ColumnWithTasksResponse struct {
	ColumnResponse
	Tasks []TaskResponse `json:"tasks"`
}

func FromColumn(c board.Column) ColumnResponse {
	return ColumnResponse{
		ID:        c.ID,
		Name:      c.Name,
		Order:     c.Order,
		BoardID:   c.BoardID,
		Role:      string(c.Role),
		CreatedAt: c.CreatedAt,
	}
}

func FromColumnsWithTasks(columns []service.ColumnWithTasks) []ColumnWithTasksResponse {
	result := make([]ColumnWithTasksResponse, len(columns))
	for i, c := range columns {
		result[i] = ColumnWithTasksResponse{
			ColumnResponse: FromColumn(c.Column),
			Tasks:          FromTaskList(c.Tasks),
		}
	}
	return result
}
