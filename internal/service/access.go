package service

import (
	"context"
	"errors"
	"fmt"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/user"
	repo "kanbanTracker/internal/repository"

	"go.uber.org/zap"
)

// AccessGate проверяет права вызывающего. Пользователь перечитывается на
// каждом вызове, поэтому смена роли действует со следующего запроса.
type AccessGate struct {
	users UserRepository
}

func NewAccessGate(users UserRepository) *AccessGate {
	return &AccessGate{users: users}
}

func (g *AccessGate) RequireAuthenticated(ctx context.Context, userID int64) (*user.User, error) {
	if userID <= 0 {
		return nil, NewUnauthenticated()
	}
	u, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Service: Пользователь из токена не найден", zap.Int64("user_id", userID))
			return nil, NewUnauthenticated()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (g *AccessGate) RequireManager(ctx context.Context, userID int64) (*user.User, error) {
	u, err := g.RequireAuthenticated(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsManager() {
		return nil, NewForbidden("Требуются права менеджера")
	}
	return u, nil
}

// CanDeleteTask: автор или менеджер.
func CanDeleteTask(u *user.User, t *task.Task) error {
	if u.ID == t.AuthorID || u.IsManager() {
		return nil
	}
	return NewForbidden("У вас нет прав для удаления этой задачи")
}

// CanMoveTask: автор, исполнитель или менеджер.
func CanMoveTask(u *user.User, t *task.Task) error {
	if u.ID == t.AuthorID || t.IsAssignee(u.ID) || u.IsManager() {
		return nil
	}
	return NewForbidden("У вас нет прав для перемещения этой задачи")
}

// CanLogTime: исполнитель или менеджер.
func CanLogTime(u *user.User, t *task.Task) error {
	if t.IsAssignee(u.ID) || u.IsManager() {
		return nil
	}
	return NewForbidden("Списывать время может только исполнитель задачи или менеджер")
}

// CanEstimate: автор или менеджер.
func CanEstimate(u *user.User, t *task.Task) error {
	if u.ID == t.AuthorID || u.IsManager() {
		return nil
	}
	return NewForbidden("Изменять оценку может только автор задачи или менеджер")
}

// AttributedUser решает, на кого записать время. Только менеджер может
// указать другого пользователя; у остальных запрошенный id игнорируется.
func AttributedUser(u *user.User, requested *int64) int64 {
	if requested != nil && u.IsManager() {
		return *requested
	}
	return u.ID
}
