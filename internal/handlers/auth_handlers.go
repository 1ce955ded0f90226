package handlers

import (
	"net/http"

	"kanbanTracker/internal/handlers/dto"
	"kanbanTracker/internal/service"
)

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
		Role:     request.Role,
	})
	if err != nil {
		handleServiceError(w, r, err, "register")
		return
	}
	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Пользователь успешно зарегистрирован"),
		toPayload("access_token", session.AccessToken),
		toPayload("user", dto.FromUser(session.User)))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.auth.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "login")
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Авторизация успешна"),
		toPayload("access_token", session.AccessToken),
		toPayload("user", dto.FromUser(session.User)))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Me(r.Context(), callerID(r))
	if err != nil {
		handleServiceError(w, r, err, "me")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromUser(u))
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context(), callerID(r))
	if err != nil {
		handleServiceError(w, r, err, "list_users")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("users", dto.FromUserList(users)))
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.auth.GetUser(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err, "get_user")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromUser(u))
}
