package handlers

import (
	"net/http"

	"kanbanTracker/internal/handlers/dto"
	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/service"
)

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.ListProjects(r.Context(), callerID(r))
	if err != nil {
		handleServiceError(w, r, err, "list_projects")
		return
	}
	if projects == nil {
		projects = []*board.Project{}
	}
	responseWithJSON(w, http.StatusOK, toPayload("projects", projects))
}

func (h *CatalogHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.catalog.GetProject(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err, "get_project")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *CatalogHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	project, err := h.catalog.CreateProject(r.Context(), callerID(r), service.CreateProjectInput{
		Name:        request.Name,
		Code:        request.Code,
		Description: request.Description,
	})
	if err != nil {
		handleServiceError(w, r, err, "create_project")
		return
	}
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Проект успешно создан"),
		toPayload("project", project))
}

func (h *CatalogHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	boards, err := h.catalog.ListBoards(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err, "list_boards")
		return
	}
	if boards == nil {
		boards = []*board.Board{}
	}
	responseWithJSON(w, http.StatusOK, toPayload("boards", boards))
}

func (h *CatalogHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateBoardRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	b, err := h.catalog.CreateBoard(r.Context(), callerID(r), request.Name, request.ProjectID)
	if err != nil {
		handleServiceError(w, r, err, "create_board")
		return
	}
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Доска успешно создана"),
		toPayload("board", b))
}

func (h *CatalogHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	columns, err := h.catalog.ListBoardColumns(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err, "list_columns")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("columns", dto.FromColumnsWithTasks(columns)))
}

func (h *CatalogHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateColumnRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	column, err := h.catalog.CreateColumn(r.Context(), callerID(r), request.Name, request.BoardID, board.ColumnRole(request.Role))
	if err != nil {
		handleServiceError(w, r, err, "create_column")
		return
	}
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Колонка успешно создана"),
		toPayload("column", dto.FromColumn(*column)))
}
