package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/user"
	repo "kanbanTracker/internal/repository"
	"kanbanTracker/pkg/auth"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Session - выданный токен и пользователь, которому он принадлежит.
type Session struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}

type AuthService struct {
	repo   UserRepository
	gate   *AccessGate
	tokens *auth.TokenManager
}

func NewAuthService(r UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{repo: r, gate: NewAccessGate(r), tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, NewValidationError("username", "имя пользователя обязательно")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, NewValidationError("email", "некорректный адрес почты")
	}
	roleName := in.Role
	if roleName == "" {
		roleName = user.RoleExecutor
	}

	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewValidationError("role", "указанная роль не существует")
		}
		return nil, fmt.Errorf("получение роли: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, NewValidationError("password", err.Error())
		}
		return nil, err
	}

	u := &user.User{
		Username:     username,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role.Name,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewBusinessError(CodeConflict, "Пользователь с таким именем или почтой уже существует",
				ToDetail("username", username))
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован",
		zap.Int64("user_id", u.ID), zap.String("role", u.Role))
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, NewValidationError("username", "имя пользователя и пароль обязательны")
	}
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	if u == nil || !auth.VerifyPassword(u.PasswordHash, password) {
		logger.Warn("Service: Неудачная попытка входа", zap.String("username", username))
		return nil, NewBusinessError(CodeUnauthenticated, "Неверное имя пользователя или пароль")
	}
	return s.session(u)
}

func (s *AuthService) session(u *user.User) (*Session, error) {
	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}
	return &Session{AccessToken: token, User: u}, nil
}

func (s *AuthService) Me(ctx context.Context, callerID int64) (*user.User, error) {
	return s.gate.RequireAuthenticated(ctx, callerID)
}

func (s *AuthService) ListUsers(ctx context.Context, callerID int64) ([]*user.User, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, callerID, userID int64) (*user.User, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, callerID); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "Пользователь", userID)
	}
	return u, nil
}
