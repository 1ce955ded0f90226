package service

import (
	"context"

	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
	"kanbanTracker/internal/models/user"
)

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUserByID(context.Context, int64) (*user.User, error)
	GetUserByUsername(context.Context, string) (*user.User, error)
	ListUsers(context.Context) ([]*user.User, error)
	GetRoleByName(context.Context, string) (*user.Role, error)
}

type CatalogRepository interface {
	CreateProject(context.Context, *board.Project) error
	// CreateProjectWithBoard атомарно создаёт проект и его первую доску с колонками.
	CreateProjectWithBoard(context.Context, *board.Project, *board.Board, []board.Column) error
	GetProject(context.Context, int64) (*board.Project, error)
	GetProjectByCode(context.Context, string) (*board.Project, error)
	ListProjects(context.Context) ([]*board.Project, error)
	// CreateBoard сохраняет доску вместе с переданными колонками.
	CreateBoard(context.Context, *board.Board, []board.Column) error
	GetBoard(context.Context, int64) (*board.Board, error)
	ListBoardsByProject(context.Context, int64) ([]*board.Board, error)
	CreateColumn(context.Context, *board.Column) error
	GetColumn(context.Context, int64) (*board.Column, error)
	ListColumnsByBoard(context.Context, int64) ([]board.Column, error)
}

type TaskRepository interface {
	CreateTask(context.Context, *task.Task) error
	GetTask(context.Context, int64) (*task.Task, error)
	UpdateTask(context.Context, *task.Task) error
	DeleteTask(context.Context, int64) error
	ListTasks(context.Context, task.Filter) ([]*task.Task, error)
	ListTasksByColumn(context.Context, int64) ([]*task.Task, error)
	ListTaskCodesByProject(context.Context, int64) ([]string, error)
}

type TimeLogRepository interface {
	// LogTime обновляет задачу и добавляет запись журнала атомарно.
	LogTime(context.Context, *task.Task, *timelog.TimeLog) error
	ListTimeLogs(context.Context, timelog.Filter) ([]*timelog.TimeLog, int, error)
	TimeSummary(context.Context, timelog.SummaryFilter) ([]timelog.SummaryRow, error)
}

type Repository interface {
	UserRepository
	CatalogRepository
	TaskRepository
	TimeLogRepository
	HealthCheck(context.Context) error
}
