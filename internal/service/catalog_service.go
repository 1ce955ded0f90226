package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	repo "kanbanTracker/internal/repository"

	"go.uber.org/zap"
)

// Ограничения длины повторяют размеры столбцов схемы.
const (
	maxProjectCodeLen  = 10
	maxNameLen         = 100
	defaultBoardSuffix = " Board"
)

type CreateProjectInput struct {
	Name        string
	Code        string
	Description string
}

// ColumnWithTasks - колонка доски вместе с её задачами.
type ColumnWithTasks struct {
	board.Column
	Tasks []*task.Task `json:"tasks"`
}

// CatalogService управляет проектами, досками и колонками.
type CatalogService struct {
	repo Repository
	gate *AccessGate
}

func NewCatalogService(r Repository) *CatalogService {
	return &CatalogService{repo: r, gate: NewAccessGate(r)}
}

// CreateProject создаёт проект и доску по умолчанию со стандартными колонками.
func (s *CatalogService) CreateProject(ctx context.Context, callerID int64, in CreateProjectInput) (*board.Project, error) {
	if _, err := s.gate.RequireManager(ctx, callerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if name == "" {
		return nil, NewValidationError("name", "имя проекта обязательно")
	}
	if code == "" {
		return nil, NewValidationError("code", "код проекта обязателен")
	}
	if strings.Contains(code, "-") {
		return nil, NewValidationError("code", "код проекта не может содержать '-'")
	}
	if utf8.RuneCountInString(code) > maxProjectCodeLen {
		return nil, NewValidationError("code", fmt.Sprintf("код проекта длиннее %d символов", maxProjectCodeLen))
	}
	// имя проекта входит в имя доски по умолчанию
	if limit := maxNameLen - len(defaultBoardSuffix); utf8.RuneCountInString(name) > limit {
		return nil, NewValidationError("name", fmt.Sprintf("имя проекта длиннее %d символов", limit))
	}

	project := &board.Project{Name: name, Code: code, Description: in.Description}
	defaultBoard := &board.Board{Name: project.Name + defaultBoardSuffix}
	if err := s.repo.CreateProjectWithBoard(ctx, project, defaultBoard, board.DefaultColumns()); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewBusinessError(CodeConflict, "Проект с таким кодом уже существует",
				ToDetail("code", code))
		}
		return nil, fmt.Errorf("создание проекта: %w", err)
	}

	logger.Info("Service: Проект создан",
		zap.Int64("project_id", project.ID),
		zap.String("code", project.Code),
		zap.Int64("board_id", defaultBoard.ID))
	return project, nil
}

func (s *CatalogService) ListProjects(ctx context.Context, callerID int64) ([]*board.Project, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	return s.repo.ListProjects(ctx)
}

func (s *CatalogService) GetProject(ctx context.Context, callerID, projectID int64) (*board.Project, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(err, "Проект", projectID)
	}
	return p, nil
}

func (s *CatalogService) ListBoards(ctx context.Context, callerID, projectID int64) ([]*board.Board, error) {
	if _, err := s.GetProject(ctx, callerID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListBoardsByProject(ctx, projectID)
}

func (s *CatalogService) CreateBoard(ctx context.Context, callerID int64, name string, projectID int64) (*board.Board, error) {
	if _, err := s.gate.RequireManager(ctx, callerID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "название доски обязательно")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, NewValidationError("name", fmt.Sprintf("название доски длиннее %d символов", maxNameLen))
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "Проект", projectID)
	}

	b := &board.Board{Name: name, ProjectID: projectID}
	if err := s.repo.CreateBoard(ctx, b, board.DefaultColumns()); err != nil {
		return nil, fmt.Errorf("создание доски: %w", err)
	}
	logger.Info("Service: Доска создана", zap.Int64("board_id", b.ID), zap.Int64("project_id", projectID))
	return b, nil
}

func (s *CatalogService) ListBoardColumns(ctx context.Context, callerID, boardID int64) ([]ColumnWithTasks, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return nil, notFoundOr(err, "Доска", boardID)
	}

	columns, err := s.repo.ListColumnsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("получение колонок: %w", err)
	}
	res := make([]ColumnWithTasks, 0, len(columns))
	for _, c := range columns {
		tasks, err := s.repo.ListTasksByColumn(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("получение задач колонки: %w", err)
		}
		res = append(res, ColumnWithTasks{Column: c, Tasks: tasks})
	}
	return res, nil
}

// CreateColumn добавляет колонку в конец доски. Роль по умолчанию
// выводится из имени.
func (s *CatalogService) CreateColumn(ctx context.Context, callerID int64, name string, boardID int64, role board.ColumnRole) (*board.Column, error) {
	if _, err := s.gate.RequireManager(ctx, callerID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "название колонки обязательно")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, NewValidationError("name", fmt.Sprintf("название колонки длиннее %d символов", maxNameLen))
	}
	if role == "" {
		role = board.RoleForName(name)
	}
	if !role.Valid() {
		return nil, NewValidationError("role", "допустимы none, entry, in_progress, done")
	}
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return nil, notFoundOr(err, "Доска", boardID)
	}

	columns, err := s.repo.ListColumnsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("получение колонок: %w", err)
	}
	order := 1
	for _, c := range columns {
		if c.Order >= order {
			order = c.Order + 1
		}
	}

	column := &board.Column{Name: name, Order: order, BoardID: boardID, Role: role}
	if err := s.repo.CreateColumn(ctx, column); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewBusinessError(CodeConflict, "Позиция колонки уже занята",
				ToDetail("order", order))
		}
		return nil, fmt.Errorf("создание колонки: %w", err)
	}
	logger.Info("Service: Колонка создана",
		zap.Int64("column_id", column.ID),
		zap.Int64("board_id", boardID),
		zap.String("role", string(column.Role)))
	return column, nil
}
