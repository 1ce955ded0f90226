package handlers

import (
	"context"

	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
	"kanbanTracker/internal/models/user"
	"kanbanTracker/internal/service"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, int64, service.CreateTaskInput) (*task.Task, error)
	CreateTaskInColumn(context.Context, int64, int64, service.CreateTaskInput) (*task.Task, error)
	GetTask(context.Context, int64, int64) (*task.Task, error)
	ListTasks(context.Context, int64, service.ListTasksInput) ([]*task.Task, error)
	UpdateTask(context.Context, int64, int64, service.UpdateTaskInput) (*task.Task, error)
	DeleteTask(context.Context, int64, int64) error
}

type TimeService interface {
	LogTime(context.Context, int64, int64, service.LogTimeInput) (*task.Task, *timelog.TimeLog, error)
	UpdateEstimate(context.Context, int64, int64, service.EstimateInput) (*task.Task, error)
	ListTimeLogs(context.Context, int64, int64, service.ListTimeLogsInput) (timelog.Page, error)
	TimeSummary(context.Context, int64, service.SummaryInput) ([]timelog.SummaryRow, error)
}

type AuthService interface {
	Register(context.Context, service.RegisterInput) (*service.Session, error)
	Login(context.Context, string, string) (*service.Session, error)
	Me(context.Context, int64) (*user.User, error)
	ListUsers(context.Context, int64) ([]*user.User, error)
	GetUser(context.Context, int64, int64) (*user.User, error)
}

type CatalogService interface {
	CreateProject(context.Context, int64, service.CreateProjectInput) (*board.Project, error)
	ListProjects(context.Context, int64) ([]*board.Project, error)
	GetProject(context.Context, int64, int64) (*board.Project, error)
	ListBoards(context.Context, int64, int64) ([]*board.Board, error)
	CreateBoard(context.Context, int64, string, int64) (*board.Board, error)
	ListBoardColumns(context.Context, int64, int64) ([]service.ColumnWithTasks, error)
	CreateColumn(context.Context, int64, string, int64, board.ColumnRole) (*board.Column, error)
}

var (
	_ TaskService    = (*service.TaskService)(nil)
	_ TimeService    = (*service.TimeService)(nil)
	_ AuthService    = (*service.AuthService)(nil)
	_ CatalogService = (*service.CatalogService)(nil)
)
