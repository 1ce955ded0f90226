package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kanbanTracker/internal/handlers"
	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
	"kanbanTracker/internal/models/user"
	"kanbanTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, caller int64, in service.CreateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTaskInColumn(ctx context.Context, caller, columnID int64, in service.CreateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, caller, columnID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, caller, id int64) (*task.Task, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, caller int64, in service.ListTasksInput) ([]*task.Task, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, caller, id int64, in service.UpdateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, caller, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockTimeService - мок учёта времени
type MockTimeService struct {
	mock.Mock
}

func (m *MockTimeService) LogTime(ctx context.Context, caller, taskID int64, in service.LogTimeInput) (*task.Task, *timelog.TimeLog, error) {
	args := m.Called(ctx, caller, taskID, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*task.Task), args.Get(1).(*timelog.TimeLog), args.Error(2)
}

func (m *MockTimeService) UpdateEstimate(ctx context.Context, caller, taskID int64, in service.EstimateInput) (*task.Task, error) {
	args := m.Called(ctx, caller, taskID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTimeService) ListTimeLogs(ctx context.Context, caller, taskID int64, in service.ListTimeLogsInput) (timelog.Page, error) {
	args := m.Called(ctx, caller, taskID, in)
	return args.Get(0).(timelog.Page), args.Error(1)
}

func (m *MockTimeService) TimeSummary(ctx context.Context, caller int64, in service.SummaryInput) ([]timelog.SummaryRow, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timelog.SummaryRow), args.Error(1)
}

// MockAuthService - мок аутентификации
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.Session, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, caller int64) (*user.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockAuthService) ListUsers(ctx context.Context, caller int64) ([]*user.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, caller, id int64) (*user.User, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// MockCatalogService - мок каталога
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateProject(ctx context.Context, caller int64, in service.CreateProjectInput) (*board.Project, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Project), args.Error(1)
}

func (m *MockCatalogService) ListProjects(ctx context.Context, caller int64) ([]*board.Project, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*board.Project), args.Error(1)
}

func (m *MockCatalogService) GetProject(ctx context.Context, caller, id int64) (*board.Project, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Project), args.Error(1)
}

func (m *MockCatalogService) ListBoards(ctx context.Context, caller, projectID int64) ([]*board.Board, error) {
	args := m.Called(ctx, caller, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*board.Board), args.Error(1)
}

func (m *MockCatalogService) CreateBoard(ctx context.Context, caller int64, name string, projectID int64) (*board.Board, error) {
	args := m.Called(ctx, caller, name, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Board), args.Error(1)
}

func (m *MockCatalogService) ListBoardColumns(ctx context.Context, caller, boardID int64) ([]service.ColumnWithTasks, error) {
	args := m.Called(ctx, caller, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ColumnWithTasks), args.Error(1)
}

func (m *MockCatalogService) CreateColumn(ctx context.Context, caller int64, name string, boardID int64, role board.ColumnRole) (*board.Column, error) {
	args := m.Called(ctx, caller, name, boardID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Column), args.Error(1)
}

var (
	_ handlers.TaskService    = (*MockTaskService)(nil)
	_ handlers.TimeService    = (*MockTimeService)(nil)
	_ handlers.AuthService    = (*MockAuthService)(nil)
	_ handlers.CatalogService = (*MockCatalogService)(nil)
)

// stubTokens принимает токены вида "user-<id>".
type stubTokens struct{}

func (stubTokens) ResolveIdentity(token string) (int64, error) {
	switch token {
	case "user-1":
		return 1, nil
	case "user-2":
		return 2, nil
	}
	return 0, errors.New("invalid token")
}

type env struct {
	tasks   *MockTaskService
	times   *MockTimeService
	auth    *MockAuthService
	catalog *MockCatalogService
	router  http.Handler
}

func newEnv() *env {
	e := &env{
		tasks:   new(MockTaskService),
		times:   new(MockTimeService),
		auth:    new(MockAuthService),
		catalog: new(MockCatalogService),
	}
	e.router = handlers.NewRouter(handlers.RouterConfig{}, handlers.Services{
		Tasks:   e.tasks,
		Times:   e.times,
		Auth:    e.auth,
		Catalog: e.catalog,
		Tokens:  stubTokens{},
	})
	return e
}

func (e *env) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) assertExpectations(t *testing.T) {
	e.tasks.AssertExpectations(t)
	e.times.AssertExpectations(t)
	e.auth.AssertExpectations(t)
	e.catalog.AssertExpectations(t)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func ptr[T any](v T) *T {
	return &v
}

func sampleTask() *task.Task {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:            7,
		Code:          "ALPHA-001",
		Title:         "Test Task",
		Priority:      task.PriorityMedium,
		EstimatedTime: 5,
		RemainingTime: 5,
		AuthorID:      1,
		ColumnID:      3,
		Status:        "Backlog",
		Author:        "alice",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

// TestHealthCheck тестирует HealthCheck
func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "success - healthy", expectedStatus: http.StatusOK},
		{name: "error - unhealthy", err: errors.New("db down"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.tasks.On("HealthCheck", mock.Anything).Return(tt.err)

			w := e.do(http.MethodGet, "/health", "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "kanban-tracker")
			e.assertExpectations(t)
		})
	}
}

func TestAuthentication(t *testing.T) {
	e := newEnv()

	for _, token := range []string{"", "garbage"} {
		w := e.do(http.MethodGet, "/api/tasks", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHENTICATED", decodeBody(t, w)["error"])
	}
	e.assertExpectations(t)
}

func TestListTasks_Query(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectCall     bool
		check          func(in service.ListTasksInput) bool
		expectedStatus int
	}{
		{
			name:       "all filters",
			query:      "?priority=HIGH&author_id=3&assignee_id=4&my_tasks=true&created_from=2026-03-01&created_to=2026-03-02T10:00:00Z",
			expectCall: true,
			check: func(in service.ListTasksInput) bool {
				return in.Filter.Priority != nil && *in.Filter.Priority == task.PriorityHigh &&
					*in.Filter.AuthorID == 3 && *in.Filter.AssigneeID == 4 && in.MyTasks &&
					in.Filter.CreatedFrom.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) &&
					in.Filter.CreatedTo.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "malformed dates ignored",
			query:      "?created_from=yesterday&created_to=32-13-2026",
			expectCall: true,
			check: func(in service.ListTasksInput) bool {
				return in.Filter.CreatedFrom == nil && in.Filter.CreatedTo == nil && !in.MyTasks
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed id rejected",
			query:          "?author_id=abc",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			if tt.expectCall {
				e.tasks.On("ListTasks", mock.Anything, int64(1), mock.MatchedBy(tt.check)).
					Return([]*task.Task{sampleTask()}, nil)
			}

			w := e.do(http.MethodGet, "/api/tasks"+tt.query, "user-1", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				tasks := decodeBody(t, w)["tasks"].([]any)
				require.Len(t, tasks, 1)
				first := tasks[0].(map[string]any)
				assert.Equal(t, "ALPHA-001", first["code"])
				assert.Equal(t, "Backlog", first["status"])
				assert.Nil(t, first["assignee"])
				assert.Nil(t, first["started_at"])
			}
			e.assertExpectations(t)
		})
	}
}

// TestCreateTask тестирует создание задачи и отображение ошибок сервиса
func TestCreateTask(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "success - create task",
			requestBody: `{"title": "Test Task", "board_id": 2, "estimated_time": 5, "assignee_id": 9}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), service.CreateTaskInput{
					BoardID: 2, Title: "Test Task", EstimatedTime: 5, AssigneeID: ptr(int64(9)),
				}).Return(sampleTask(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - missing board",
			requestBody:    `{"title": "Test Task"}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - invalid json",
			requestBody:    `{"title": `,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:        "error - no columns",
			requestBody: `{"title": "x", "board_id": 2}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), mock.Anything).
					Return(nil, service.NewBusinessError(service.CodeNoColumns, "На доске нет колонок"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeNoColumns,
		},
		{
			name:        "error - board not found",
			requestBody: `{"title": "x", "board_id": 2}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), mock.Anything).
					Return(nil, service.NewNotFound("Доска", 2))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  service.CodeNotFound,
		},
		{
			name:        "error - generation failed",
			requestBody: `{"title": "x", "board_id": 2}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), mock.Anything).
					Return(nil, service.NewGenerationError("ALPHA", errors.New("missing")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  service.CodeCodeGenerationFailed,
		},
		{
			name:        "error - duplicate code",
			requestBody: `{"title": "x", "board_id": 2}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), mock.Anything).
					Return(nil, service.NewBusinessError(service.CodeDuplicateCode, "conflict"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  service.CodeDuplicateCode,
		},
		{
			name:        "error - unexpected",
			requestBody: `{"title": "x", "board_id": 2}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, int64(1), mock.Anything).
					Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			tt.setupMock(e.tasks)

			w := e.do(http.MethodPost, "/api/tasks", "user-1", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				assert.NotEmpty(t, body["message"])
				assert.NotNil(t, body["details"])
			} else {
				created := body["task"].(map[string]any)
				assert.Equal(t, "ALPHA-001", created["code"])
			}
			e.assertExpectations(t)
		})
	}
}

func TestCreateTaskInColumn(t *testing.T) {
	e := newEnv()
	e.tasks.On("CreateTaskInColumn", mock.Anything, int64(2), int64(5), service.CreateTaskInput{Title: "direct"}).
		Return(sampleTask(), nil)

	w := e.do(http.MethodPost, "/api/tasks/column/5", "user-2", `{"title": "direct"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	e.assertExpectations(t)
}

func TestGetTask(t *testing.T) {
	e := newEnv()
	e.tasks.On("GetTask", mock.Anything, int64(1), int64(7)).Return(sampleTask(), nil)
	e.tasks.On("GetTask", mock.Anything, int64(1), int64(8)).Return(nil, service.NewNotFound("Задача", 8))

	w := e.do(http.MethodGet, "/api/tasks/7", "user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test Task", decodeBody(t, w)["title"])

	w = e.do(http.MethodGet, "/api/tasks/8", "user-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/tasks/abc", "user-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.assertExpectations(t)
}

// TestUpdateTask проверяет различие между null и отсутствием поля
func TestUpdateTask(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(in service.UpdateTaskInput) bool
	}{
		{
			name: "assignee null unassigns",
			body: `{"assignee_id": null}`,
			check: func(in service.UpdateTaskInput) bool {
				return in.AssigneeSet && in.AssigneeID == nil && in.Title == nil
			},
		},
		{
			name: "assignee absent untouched",
			body: `{"title": "new", "column_id": 4}`,
			check: func(in service.UpdateTaskInput) bool {
				return !in.AssigneeSet && *in.Title == "new" && *in.ColumnID == 4
			},
		},
		{
			name: "priority and hours",
			body: `{"priority": "high", "remaining_time": 2.5, "spent_time": 1}`,
			check: func(in service.UpdateTaskInput) bool {
				return *in.Priority == task.PriorityHigh && *in.RemainingTime == 2.5 && *in.SpentTime == 1 && in.EstimatedTime == nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.tasks.On("UpdateTask", mock.Anything, int64(1), int64(7), mock.MatchedBy(tt.check)).
				Return(sampleTask(), nil)

			w := e.do(http.MethodPut, "/api/tasks/7", "user-1", tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			e.assertExpectations(t)
		})
	}

	t.Run("forbidden move", func(t *testing.T) {
		e := newEnv()
		e.tasks.On("UpdateTask", mock.Anything, int64(2), int64(7), mock.Anything).
			Return(nil, service.NewForbidden("нет прав"))

		w := e.do(http.MethodPut, "/api/tasks/7", "user-2", `{"column_id": 4}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, service.CodeForbidden, decodeBody(t, w)["error"])
	})
}

func TestDeleteTask(t *testing.T) {
	e := newEnv()
	e.tasks.On("DeleteTask", mock.Anything, int64(1), int64(7)).Return(nil)
	e.tasks.On("DeleteTask", mock.Anything, int64(2), int64(7)).Return(service.NewForbidden("нет прав"))

	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/tasks/7", "user-1", "").Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/api/tasks/7", "user-2", "").Code)
	e.assertExpectations(t)
}

func TestLogTime(t *testing.T) {
	e := newEnv()
	entry := &timelog.TimeLog{ID: 1, TaskID: 7, UserID: 1, LoggedByID: 1, SpentHours: 2, RemainingHours: 3}
	e.times.On("LogTime", mock.Anything, int64(1), int64(7), service.LogTimeInput{SpentHours: 2, Comment: "done", UserID: ptr(int64(2))}).
		Return(sampleTask(), entry, nil)
	e.times.On("LogTime", mock.Anything, int64(1), int64(7), service.LogTimeInput{SpentHours: 0}).
		Return(nil, nil, service.NewInvalidAmount("spent_hours", 0))

	w := e.do(http.MethodPost, "/api/tasks/7/time", "user-1", `{"spent_hours": 2, "comment": "done", "user_id": 2}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	logged := decodeBody(t, w)["time_log"].(map[string]any)
	assert.Equal(t, 3.0, logged["remaining_hours"])

	w = e.do(http.MethodPost, "/api/tasks/7/time", "user-1", `{"spent_hours": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeInvalidAmount, decodeBody(t, w)["error"])

	e.assertExpectations(t)
}

func TestUpdateEstimate(t *testing.T) {
	e := newEnv()
	e.times.On("UpdateEstimate", mock.Anything, int64(1), int64(7), service.EstimateInput{EstimatedTime: 8, RemainingTime: ptr(4.0)}).
		Return(sampleTask(), nil)

	w := e.do(http.MethodPost, "/api/tasks/7/estimate", "user-1", `{"estimated_hours": 8, "remaining_hours": 4}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/tasks/7/estimate", "user-1", `{"remaining_hours": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.assertExpectations(t)
}

func TestListTimeLogs(t *testing.T) {
	e := newEnv()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e.times.On("ListTimeLogs", mock.Anything, int64(1), int64(7), service.ListTimeLogsInput{
		UserID:    ptr(int64(2)),
		From:      &from,
		Ascending: true,
		Page:      3,
		PerPage:   5,
	}).Return(timelog.NewPage(nil, 3, 5, 11), nil)

	w := e.do(http.MethodGet, "/api/tasks/7/time-logs?user_id=2&from_date=2026-03-01&to_date=bad&sort=asc&page=3&per_page=5", "user-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, []any{}, body["time_logs"])
	assert.Equal(t, 11.0, body["total_items"])
	assert.Equal(t, 3.0, body["total_pages"])
	e.assertExpectations(t)
}

func TestTimeSummary(t *testing.T) {
	e := newEnv()
	e.times.On("TimeSummary", mock.Anything, int64(1), service.SummaryInput{BoardID: ptr(int64(4))}).
		Return([]timelog.SummaryRow{{UserID: 2, Username: "bob", TotalSpentHours: 6, LogCount: 3}}, nil)
	e.times.On("TimeSummary", mock.Anything, int64(2), mock.Anything).
		Return(nil, service.NewForbidden("Требуются права менеджера"))

	w := e.do(http.MethodGet, "/api/tasks/time-summary?board_id=4", "user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	rows := decodeBody(t, w)["summary"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0].(map[string]any)["username"])

	w = e.do(http.MethodGet, "/api/tasks/time-summary", "user-2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/tasks/time-summary?project_id=-1", "user-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.assertExpectations(t)
}

func TestAuthRoutes(t *testing.T) {
	e := newEnv()
	carol := &user.User{ID: 5, Username: "carol", Email: "carol@example.com", Role: user.RoleExecutor}
	e.auth.On("Register", mock.Anything, service.RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret1"}).
		Return(&service.Session{AccessToken: "tok", User: carol}, nil)
	e.auth.On("Login", mock.Anything, "carol", "wrong").
		Return(nil, service.NewBusinessError(service.CodeUnauthenticated, "Неверное имя пользователя или пароль"))
	e.auth.On("Me", mock.Anything, int64(1)).Return(carol, nil)

	w := e.do(http.MethodPost, "/api/auth/register", "", `{"username": "carol", "email": "carol@example.com", "password": "secret1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "tok", body["access_token"])
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(http.MethodPost, "/api/auth/login", "", `{"username": "carol", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/auth/me", "user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "carol", decodeBody(t, w)["username"])

	e.assertExpectations(t)
}

func TestCatalogRoutes(t *testing.T) {
	e := newEnv()
	e.catalog.On("CreateProject", mock.Anything, int64(1), service.CreateProjectInput{Name: "Beta", Code: "beta"}).
		Return(&board.Project{ID: 3, Name: "Beta", Code: "BETA"}, nil)
	e.catalog.On("ListBoardColumns", mock.Anything, int64(1), int64(4)).
		Return([]service.ColumnWithTasks{{Column: board.Column{ID: 1, Name: "Backlog", Order: 1, Role: board.RoleEntry}, Tasks: []*task.Task{}}}, nil)
	e.catalog.On("CreateColumn", mock.Anything, int64(2), "Archive", int64(4), board.ColumnRole("")).
		Return(nil, service.NewForbidden("Требуются права менеджера"))

	w := e.do(http.MethodPost, "/api/projects", "user-1", `{"name": "Beta", "code": "beta"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodGet, "/api/boards/4/columns", "user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	columns := decodeBody(t, w)["columns"].([]any)
	require.Len(t, columns, 1)
	first := columns[0].(map[string]any)
	assert.Equal(t, "entry", first["role"])
	assert.Equal(t, []any{}, first["tasks"])

	w = e.do(http.MethodPost, "/api/columns", "user-2", `{"name": "Archive", "board_id": 4}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.assertExpectations(t)
}

// TestRequestLogging проверяет, что обработчики пишут входящий запрос в лог
func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = previous })

	e := newEnv()
	e.tasks.On("DeleteTask", mock.Anything, int64(1), int64(7)).Return(nil)

	w := e.do(http.MethodDelete, "/api/tasks/7?force=1", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("HTTP_IN:").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodDelete, fields["method"])
	assert.Equal(t, "/api/tasks/7", fields["path"])
	assert.Equal(t, "force=1", fields["query"])
	e.assertExpectations(t)
}
