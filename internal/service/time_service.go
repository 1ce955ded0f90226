package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"

	"go.uber.org/zap"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type LogTimeInput struct {
	SpentHours     float64
	RemainingHours *float64
	Comment        string
	UserID         *int64
}

type EstimateInput struct {
	EstimatedTime float64
	RemainingTime *float64
}

type ListTimeLogsInput struct {
	UserID     *int64
	LoggedByID *int64
	From       *time.Time
	To         *time.Time
	Ascending  bool
	Page       int
	PerPage    int
}

type SummaryInput struct {
	ProjectID *int64
	BoardID   *int64
	UserID    *int64
	From      *time.Time
	To        *time.Time
}

// TimeService ведёт учёт списанного времени и оценок задач.
type TimeService struct {
	repo           Repository
	gate           *AccessGate
	defaultPerPage int
	maxPerPage     int
	now            func() time.Time
}

type TimeServiceOption func(*TimeService)

func WithPaging(defaultPerPage, maxPerPage int) TimeServiceOption {
	return func(s *TimeService) {
		if defaultPerPage > 0 {
			s.defaultPerPage = defaultPerPage
		}
		if maxPerPage > 0 {
			s.maxPerPage = maxPerPage
		}
	}
}

func WithTimeClock(now func() time.Time) TimeServiceOption {
	return func(s *TimeService) {
		s.now = now
	}
}

func NewTimeService(r Repository, opts ...TimeServiceOption) *TimeService {
	s := &TimeService{
		repo:           r,
		gate:           NewAccessGate(r),
		defaultPerPage: DefaultPerPage,
		maxPerPage:     MaxPerPage,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultPerPage > s.maxPerPage {
		s.defaultPerPage = s.maxPerPage
	}
	return s
}

func (s *TimeService) LogTime(ctx context.Context, callerID, taskID int64, in LogTimeInput) (*task.Task, *timelog.TimeLog, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	if in.SpentHours <= 0 || math.IsNaN(in.SpentHours) || math.IsInf(in.SpentHours, 0) {
		return nil, nil, NewInvalidAmount("spent_hours", in.SpentHours)
	}
	if in.RemainingHours != nil && *in.RemainingHours < 0 {
		return nil, nil, NewInvalidAmount("remaining_hours", *in.RemainingHours)
	}

	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, notFoundOr(err, "Задача", taskID)
	}

	attributed := AttributedUser(caller, in.UserID)
	if attributed != caller.ID {
		// менеджер списывает за другого: пользователь должен существовать
		if _, err := s.repo.GetUserByID(ctx, attributed); err != nil {
			return nil, nil, notFoundOr(err, "Пользователь", attributed)
		}
	} else if err := CanLogTime(caller, t); err != nil {
		return nil, nil, err
	}

	t.SpentTime += in.SpentHours
	if in.RemainingHours != nil {
		t.RemainingTime = *in.RemainingHours
	} else {
		t.RemainingTime = math.Max(0, t.RemainingTime-in.SpentHours)
	}

	entry := &timelog.TimeLog{
		TaskID:         t.ID,
		UserID:         attributed,
		LoggedByID:     caller.ID,
		SpentHours:     in.SpentHours,
		RemainingHours: t.RemainingTime,
		Comment:        in.Comment,
		CreatedAt:      s.now(),
	}
	if err := s.repo.LogTime(ctx, t, entry); err != nil {
		return nil, nil, notFoundOr(err, "Задача", taskID)
	}

	logger.Info("Service: Время списано",
		zap.Int64("task_id", t.ID),
		zap.Int64("user_id", attributed),
		zap.Int64("logged_by_id", caller.ID),
		zap.Float64("spent_hours", in.SpentHours))
	return t, entry, nil
}

func (s *TimeService) UpdateEstimate(ctx context.Context, callerID, taskID int64, in EstimateInput) (*task.Task, error) {
	caller, err := s.gate.RequireAuthenticated(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if in.EstimatedTime < 0 || math.IsNaN(in.EstimatedTime) {
		return nil, NewInvalidAmount("estimated_time", in.EstimatedTime)
	}
	if in.RemainingTime != nil && *in.RemainingTime < 0 {
		return nil, NewInvalidAmount("remaining_time", *in.RemainingTime)
	}

	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "Задача", taskID)
	}
	if err := CanEstimate(caller, t); err != nil {
		return nil, err
	}

	remaining := math.Max(0, in.EstimatedTime-t.SpentTime)
	if in.RemainingTime != nil {
		remaining = *in.RemainingTime
	}
	task.Apply(t, task.WithEstimatedTime(in.EstimatedTime), task.WithRemainingTime(remaining))

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, notFoundOr(err, "Задача", taskID)
	}
	logger.Info("Service: Оценка задачи обновлена",
		zap.Int64("task_id", t.ID),
		zap.Float64("estimated_time", t.EstimatedTime),
		zap.Float64("remaining_time", t.RemainingTime))
	return t, nil
}

func (s *TimeService) ListTimeLogs(ctx context.Context, callerID, taskID int64, in ListTimeLogsInput) (timelog.Page, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return timelog.Page{}, err
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return timelog.Page{}, notFoundOr(err, "Задача", taskID)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = s.defaultPerPage
	}
	if perPage > s.maxPerPage {
		perPage = s.maxPerPage
	}

	items, total, err := s.repo.ListTimeLogs(ctx, timelog.Filter{
		TaskID:     taskID,
		UserID:     in.UserID,
		LoggedByID: in.LoggedByID,
		From:       in.From,
		To:         in.To,
		Ascending:  in.Ascending,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return timelog.Page{}, fmt.Errorf("получение журнала времени: %w", err)
	}
	return timelog.NewPage(items, page, perPage, total), nil
}

// TimeSummary агрегирует списанное время по пользователям. Проект и доска
// сужают выборку до своих колонок; пустая область даёт пустой результат.
func (s *TimeService) TimeSummary(ctx context.Context, callerID int64, in SummaryInput) ([]timelog.SummaryRow, error) {
	if _, err := s.gate.RequireManager(ctx, callerID); err != nil {
		return nil, err
	}

	filter := timelog.SummaryFilter{UserID: in.UserID, From: in.From, To: in.To}

	if in.ProjectID != nil {
		ids, err := s.projectColumns(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		filter.ColumnIDs = ids
	}
	if in.BoardID != nil {
		ids, err := s.boardColumns(ctx, *in.BoardID)
		if err != nil {
			return nil, err
		}
		if filter.ColumnIDs != nil {
			ids = intersect(filter.ColumnIDs, ids)
		}
		filter.ColumnIDs = ids
	}

	if filter.ColumnIDs != nil && len(filter.ColumnIDs) == 0 {
		logger.Debug("Service: Область сводки не содержит колонок")
		return []timelog.SummaryRow{}, nil
	}

	rows, err := s.repo.TimeSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("сводка времени: %w", err)
	}
	if rows == nil {
		rows = []timelog.SummaryRow{}
	}
	return rows, nil
}

func (s *TimeService) projectColumns(ctx context.Context, projectID int64) ([]int64, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "Проект", projectID)
	}
	boards, err := s.repo.ListBoardsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение досок проекта: %w", err)
	}
	ids := []int64{}
	for _, b := range boards {
		columns, err := s.repo.ListColumnsByBoard(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("получение колонок: %w", err)
		}
		for _, c := range columns {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *TimeService) boardColumns(ctx context.Context, boardID int64) ([]int64, error) {
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return nil, notFoundOr(err, "Доска", boardID)
	}
	columns, err := s.repo.ListColumnsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("получение колонок: %w", err)
	}
	ids := make([]int64, 0, len(columns))
	for _, c := range columns {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func intersect(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	res := []int64{}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			res = append(res, id)
		}
	}
	return res
}
