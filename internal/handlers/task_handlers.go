package handlers

import (
	"net/http"
	"strings"
	"time"

	"kanbanTracker/internal/handlers/dto"
	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/middleware"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/service"

	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks TaskService
	times TimeService
}

func NewTaskHandler(tasks TaskService, times TimeService) *TaskHandler {
	return &TaskHandler{tasks: tasks, times: times}
}

func callerID(r *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	authorID, err := queryID(r, "author_id")
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}
	assigneeID, err := queryID(r, "assignee_id")
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	input := service.ListTasksInput{
		Filter: task.Filter{
			AuthorID:    authorID,
			AssigneeID:  assigneeID,
			CreatedFrom: queryTime(r, "created_from"),
			CreatedTo:   queryTime(r, "created_to"),
		},
		MyTasks: queryBool(r, "my_tasks"),
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := task.Priority(strings.ToLower(raw))
		input.Filter.Priority = &priority
	}

	tasks, err := h.tasks.ListTasks(r.Context(), callerID(r), input)
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.tasks.GetTask(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.BoardID <= 0 {
		handleServiceError(w, r, service.NewValidationError("board_id", "ID доски обязателен"), "create_task")
		return
	}

	created, err := h.tasks.CreateTask(r.Context(), callerID(r), request.Input())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.String("code", created.Code),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Задача успешно создана"),
		toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) CreateTaskInColumn(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	columnID, ok := pathID(w, r, "columnID")
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.tasks.CreateTaskInColumn(r.Context(), callerID(r), columnID, request.Input())
	if err != nil {
		handleServiceError(w, r, err, "create_task_in_column")
		return
	}

	logger.Info("HTTP_OUT: Задача создана в колонке",
		zap.Int64("task_id", created.ID),
		zap.Int64("column_id", columnID))
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Задача успешно создана"),
		toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), callerID(r), id, request.Input())
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена", zap.Int64("task_id", id))
	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Задача успешно обновлена"),
		toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), callerID(r), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена", zap.Int64("task_id", id))
	responseWithJSON(w, http.StatusOK, toPayload("message", "Задача успешно удалена"))
}

func (h *TaskHandler) LogTime(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.LogTimeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, entry, err := h.times.LogTime(r.Context(), callerID(r), id, request.Input())
	if err != nil {
		handleServiceError(w, r, err, "log_time")
		return
	}

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Время успешно списано"),
		toPayload("time_log", dto.FromTimeLog(entry)),
		toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) UpdateEstimate(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.EstimateRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.EstimatedHours == nil {
		handleServiceError(w, r, service.NewValidationError("estimated_hours", "оценка обязательна"), "update_estimate")
		return
	}

	updated, err := h.times.UpdateEstimate(r.Context(), callerID(r), id, service.EstimateInput{
		EstimatedTime: *request.EstimatedHours,
		RemainingTime: request.RemainingHours,
	})
	if err != nil {
		handleServiceError(w, r, err, "update_estimate")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Оценка успешно обновлена"),
		toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	userID, err := queryID(r, "user_id")
	if err != nil {
		handleServiceError(w, r, err, "list_time_logs")
		return
	}
	loggedByID, err := queryID(r, "logged_by_id")
	if err != nil {
		handleServiceError(w, r, err, "list_time_logs")
		return
	}

	page, err := h.times.ListTimeLogs(r.Context(), callerID(r), id, service.ListTimeLogsInput{
		UserID:     userID,
		LoggedByID: loggedByID,
		From:       queryTime(r, "from_date"),
		To:         queryTime(r, "to_date"),
		Ascending:  strings.EqualFold(r.URL.Query().Get("sort"), "asc"),
		Page:       queryInt(r, "page"),
		PerPage:    queryInt(r, "per_page"),
	})
	if err != nil {
		handleServiceError(w, r, err, "list_time_logs")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromTimeLogPage(page))
}

func (h *TaskHandler) TimeSummary(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	input := service.SummaryInput{
		From: queryTime(r, "from_date"),
		To:   queryTime(r, "to_date"),
	}
	var err error
	if input.ProjectID, err = queryID(r, "project_id"); err != nil {
		handleServiceError(w, r, err, "time_summary")
		return
	}
	if input.BoardID, err = queryID(r, "board_id"); err != nil {
		handleServiceError(w, r, err, "time_summary")
		return
	}
	if input.UserID, err = queryID(r, "user_id"); err != nil {
		handleServiceError(w, r, err, "time_summary")
		return
	}

	rows, err := h.times.TimeSummary(r.Context(), callerID(r), input)
	if err != nil {
		handleServiceError(w, r, err, "time_summary")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("summary", rows))
}
