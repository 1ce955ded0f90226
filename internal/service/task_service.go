package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	repo "kanbanTracker/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const defaultCodeRetries = 3

type CreateTaskInput struct {
	BoardID       int64
	Title         string
	Description   string
	Priority      task.Priority
	AssigneeID    *int64
	EstimatedTime float64
}

// UpdateTaskInput: nil - поле не передано. AssigneeSet отличает
// явный null (снять исполнителя) от отсутствия поля.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *task.Priority
	ColumnID      *int64
	AssigneeSet   bool
	AssigneeID    *int64
	EstimatedTime *float64
	RemainingTime *float64
	SpentTime     *float64
}

type TaskService struct {
	repo        Repository
	gate        *AccessGate
	codes       *CodeGenerator
	codeRetries uint64
	now         func() time.Time
}

type TaskServiceOption func(*TaskService)

func WithCodeRetries(n int) TaskServiceOption {
	return func(s *TaskService) {
		if n >= 0 {
			s.codeRetries = uint64(n)
		}
	}
}

func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		s.now = now
	}
}

func NewTaskService(r Repository, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		repo:        r,
		gate:        NewAccessGate(r),
		codes:       NewCodeGenerator(r, r),
		codeRetries: defaultCodeRetries,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func validPriority(p task.Priority) bool {
	switch p {
	case task.PriorityLow, task.PriorityMedium, task.PriorityHigh:
		return true
	}
	return false
}

func (s *TaskService) CreateTask(ctx context.Context, callerID int64, in CreateTaskInput) (*task.Task, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	b, err := s.repo.GetBoard(ctx, in.BoardID)
	if err != nil {
		return nil, notFoundOr(err, "Доска", in.BoardID)
	}

	columns, err := s.repo.ListColumnsByBoard(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("получение колонок: %w", err)
	}
	entry, ok := board.EntryColumn(columns)
	if !ok {
		return nil, NewBusinessError(CodeNoColumns, "На доске нет колонок", ToDetail("board_id", b.ID))
	}

	return s.createInColumn(ctx, caller.ID, b.ProjectID, entry.ID, in)
}

// CreateTaskInColumn создаёт задачу сразу в указанной колонке.
func (s *TaskService) CreateTaskInColumn(ctx context.Context, callerID, columnID int64, in CreateTaskInput) (*task.Task, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return nil, notFoundOr(err, "Колонка", columnID)
	}
	b, err := s.repo.GetBoard(ctx, column.BoardID)
	if err != nil {
		return nil, notFoundOr(err, "Доска", column.BoardID)
	}

	return s.createInColumn(ctx, caller.ID, b.ProjectID, column.ID, in)
}

func validateCreate(in *CreateTaskInput) error {
	if in.Title == "" {
		return NewValidationError("title", "название задачи обязательно")
	}
	if in.Priority == "" {
		in.Priority = task.PriorityMedium
	}
	if !validPriority(in.Priority) {
		return NewValidationError("priority", "допустимы low, medium, high")
	}
	if in.EstimatedTime < 0 {
		return NewInvalidAmount("estimated_time", in.EstimatedTime)
	}
	return nil
}

func (s *TaskService) createInColumn(ctx context.Context, authorID, projectID, columnID int64, in CreateTaskInput) (*task.Task, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, NewGenerationError("", err)
	}

	newTask := &task.Task{
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		EstimatedTime: in.EstimatedTime,
		RemainingTime: in.EstimatedTime,
		AuthorID:      authorID,
		ColumnID:      columnID,
		CreatedAt:     s.now(),
	}

	if in.AssigneeID != nil {
		assigneeID := *in.AssigneeID
		err := applyBestEffort(ctx, newTask, "assignee_id", func(ctx context.Context) (task.TaskOption, error) {
			if _, err := s.repo.GetUserByID(ctx, assigneeID); err != nil {
				return nil, err
			}
			return task.WithAssignee(&assigneeID), nil
		})
		if err != nil {
			return nil, err
		}
	}

	// код выводится сканированием, поэтому при гонке двух созданий
	// повторяем генерацию ограниченное число раз
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), s.codeRetries), ctx)
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		code, err := s.codes.NextCode(ctx, project.Code)
		if err != nil {
			return backoff.Permanent(err)
		}
		newTask.Code = code
		err = s.repo.CreateTask(ctx, newTask)
		if errors.Is(err, repo.ErrDuplicateCode) {
			logger.Warn("Service: Конфликт кода задачи, повтор",
				zap.String("code", code), zap.Int("attempt", attempt))
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
	if err != nil {
		var busErr *BusinessError
		if errors.As(err, &busErr) {
			return nil, busErr
		}
		if errors.Is(err, repo.ErrDuplicateCode) {
			return nil, NewBusinessError(CodeDuplicateCode, "Не удалось выделить уникальный код задачи",
				ToDetail("project_code", project.Code))
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Колонка", columnID)
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", newTask.ID),
		zap.String("code", newTask.Code),
		zap.Int64("column_id", newTask.ColumnID))
	return newTask, nil
}

func (s *TaskService) GetTask(ctx context.Context, callerID, taskID int64) (*task.Task, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	return s.loadTask(ctx, taskID)
}

func (s *TaskService) loadTask(ctx context.Context, taskID int64) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", taskID))
		}
		return nil, notFoundOr(err, "Задача", taskID)
	}
	return t, nil
}

type ListTasksInput struct {
	Filter  task.Filter
	MyTasks bool
}

func (s *TaskService) ListTasks(ctx context.Context, callerID int64, in ListTasksInput) ([]*task.Task, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, err
	}

	filter := in.Filter
	if in.MyTasks {
		// оба условия по исполнителю объединяются через AND
		if filter.AssigneeID != nil && *filter.AssigneeID != caller.ID {
			return []*task.Task{}, nil
		}
		id := caller.ID
		filter.AssigneeID = &id
	}
	if filter.Priority != nil && !validPriority(*filter.Priority) {
		return []*task.Task{}, nil
	}

	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, callerID, taskID int64, in UpdateTaskInput) (*task.Task, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, err
	}
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if in.ColumnID != nil {
		if err := CanMoveTask(caller, t); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil && !validPriority(*in.Priority) {
		return nil, NewValidationError("priority", "допустимы low, medium, high")
	}

	options := []task.TaskOption{}
	if in.Title != nil {
		options = append(options, task.WithTitle(*in.Title))
	}
	if in.Description != nil {
		options = append(options, task.WithDescription(*in.Description))
	}
	if in.Priority != nil {
		options = append(options, task.WithPriority(*in.Priority))
	}
	if in.EstimatedTime != nil {
		options = append(options, task.WithEstimatedTime(*in.EstimatedTime))
	}
	if in.RemainingTime != nil {
		options = append(options, task.WithRemainingTime(*in.RemainingTime))
	}
	if in.SpentTime != nil {
		options = append(options, task.WithSpentTime(*in.SpentTime))
	}
	task.Apply(t, options...)
	changed := len(options) > 0

	if in.ColumnID != nil {
		columnID := *in.ColumnID
		before := *t
		err := applyBestEffort(ctx, t, "column_id", func(ctx context.Context) (task.TaskOption, error) {
			column, target, err := s.columnWithProject(ctx, columnID)
			if err != nil {
				return nil, err
			}
			_, current, err := s.columnWithProject(ctx, t.ColumnID)
			if err != nil {
				return nil, err
			}
			// код задачи принадлежит проекту, поэтому между проектами задачи не переносятся
			if target != current {
				return nil, fmt.Errorf("колонка %d из проекта %d: %w", columnID, target, repo.ErrNotFound)
			}
			return task.WithColumn(column.ID,
				column.Role == board.RoleInProgress,
				column.Role == board.RoleDone,
				s.now()), nil
		})
		if err != nil {
			return nil, err
		}
		changed = changed || t.ColumnID != before.ColumnID ||
			(before.StartedAt == nil && t.StartedAt != nil) ||
			(before.CompletedAt == nil && t.CompletedAt != nil)
	}

	if in.AssigneeSet {
		if in.AssigneeID == nil {
			task.Apply(t, task.WithAssignee(nil))
			changed = true
		} else {
			assigneeID := *in.AssigneeID
			err := applyBestEffort(ctx, t, "assignee_id", func(ctx context.Context) (task.TaskOption, error) {
				if _, err := s.repo.GetUserByID(ctx, assigneeID); err != nil {
					return nil, err
				}
				changed = true
				return task.WithAssignee(&assigneeID), nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if !changed {
		return t, nil
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, notFoundOr(err, "Задача", taskID)
	}
	logger.Info("Service: Задача обновлена", zap.Int64("task_id", t.ID), zap.Int64("caller_id", caller.ID))
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, callerID, taskID int64) error {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return err
	}
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := CanDeleteTask(caller, t); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return notFoundOr(err, "Задача", taskID)
	}
	logger.Info("Service: Задача удалена", zap.Int64("task_id", taskID), zap.Int64("caller_id", caller.ID))
	return nil
}

// columnWithProject загружает колонку и id проекта её доски.
func (s *TaskService) columnWithProject(ctx context.Context, columnID int64) (*board.Column, int64, error) {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return nil, 0, err
	}
	b, err := s.repo.GetBoard(ctx, column.BoardID)
	if err != nil {
		return nil, 0, err
	}
	return column, b.ProjectID, nil
}

// notFoundOr превращает repo.ErrNotFound в NOT_FOUND, остальное оборачивает.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFound(resource, id)
	}
	return fmt.Errorf("%s %v: %w", resource, id, err)
}
