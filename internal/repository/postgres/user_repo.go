package postgres

import (
	"context"
	"fmt"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/user"

	sq "github.com/Masterminds/squirrel"
)

func userSelect() sq.SelectBuilder {
	return psql.Select("u.id", "u.username", "u.email", "u.password_hash", "u.role_id", "r.name", "u.created_at").
		From("users u").
		Join("roles r ON r.id = u.role_id")
}

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.Role, &u.CreatedAt)
	return u, err
}

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer warnIfSlow("create_user", start, 50*time.Millisecond)

	err := queryRow(ctx, s.pool,
		psql.Insert("users").
			Columns("username", "email", "password_hash", "role_id").
			Values(u.Username, u.Email, u.PasswordHash, u.RoleID).
			Suffix("RETURNING id, created_at, (SELECT name FROM roles WHERE id = role_id)"),
		&u.ID, &u.CreatedAt, &u.Role)
	if err != nil {
		logger.Error("Repository: Не удалось добавить пользователя", err)
		return fmt.Errorf("добавление пользователя: %w", translate(err))
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getUser(ctx, sq.Eq{"u.id": id})
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getUser(ctx, sq.Eq{"u.username": username})
}

func (s *Storage) getUser(ctx context.Context, where sq.Eq) (*user.User, error) {
	sqlText, args, err := userSelect().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, sqlText, args...))
	if err != nil {
		return nil, fmt.Errorf("получение пользователя: %w", translate(err))
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := query(ctx, s.pool, userSelect().OrderBy("u.id"))
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование пользователя: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return users, nil
}

func (s *Storage) GetRoleByName(ctx context.Context, name string) (*user.Role, error) {
	role := &user.Role{}
	err := queryRow(ctx, s.pool,
		psql.Select("id", "name").From("roles").Where(sq.Eq{"name": name}),
		&role.ID, &role.Name)
	if err != nil {
		return nil, fmt.Errorf("получение роли: %w", translate(err))
	}
	return role, nil
}
