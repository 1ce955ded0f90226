package inmemory

import (
	"context"
	"sort"

	"kanbanTracker/internal/models/user"
	repo "kanbanTracker/internal/repository"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	role, ok := s.roles[u.RoleID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}

	u.ID = s.nextID()
	u.CreatedAt = stamp(u.CreatedAt)
	u.Role = role.Name
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.userView(u), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return s.userView(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) ListUsers(ctx context.Context) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		res = append(res, s.userView(u))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Storage) GetRoleByName(ctx context.Context, name string) (*user.Role, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, r := range s.roles {
		if r.Name == name {
			role := *r
			return &role, nil
		}
	}
	return nil, repo.ErrNotFound
}

// SetUserRole меняет роль пользователя; нужен для сидирования и тестов.
func (s *Storage) SetUserRole(ctx context.Context, userID int64, roleName string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, r := range s.roles {
		if r.Name == roleName {
			u.RoleID = r.ID
			u.Role = r.Name
			return nil
		}
	}
	return repo.ErrNotFound
}

// userView отдаёт копию с актуальным именем роли.
func (s *Storage) userView(u *user.User) *user.User {
	view := *u
	if r, ok := s.roles[u.RoleID]; ok {
		view.Role = r.Name
	}
	return &view
}
