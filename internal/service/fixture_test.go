package service_test

import (
	"context"
	"testing"
	"time"

	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/user"
	"kanbanTracker/internal/repository/inmemory"

	"github.com/stretchr/testify/require"
)

// fixture - проект ALPHA с доской по умолчанию и тремя пользователями.
type fixture struct {
	storage  *inmemory.Storage
	manager  *user.User
	author   *user.User
	assignee *user.User
	stranger *user.User
	project  *board.Project
	board    *board.Board
	columns  map[string]board.Column
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	storage := inmemory.NewStorage()

	f := &fixture{storage: storage, columns: make(map[string]board.Column)}
	f.manager = addUser(t, storage, "boss", user.RoleManager)
	f.author = addUser(t, storage, "alice", user.RoleExecutor)
	f.assignee = addUser(t, storage, "bob", user.RoleExecutor)
	f.stranger = addUser(t, storage, "eve", user.RoleExecutor)

	f.project = &board.Project{Name: "Alpha", Code: "ALPHA"}
	require.NoError(t, storage.CreateProject(ctx, f.project))

	f.board = &board.Board{Name: "Alpha Board", ProjectID: f.project.ID}
	require.NoError(t, storage.CreateBoard(ctx, f.board, board.DefaultColumns()))

	columns, err := storage.ListColumnsByBoard(ctx, f.board.ID)
	require.NoError(t, err)
	for _, c := range columns {
		f.columns[c.Name] = c
	}
	return f
}

func addUser(t *testing.T, storage *inmemory.Storage, name, roleName string) *user.User {
	t.Helper()
	ctx := context.Background()

	role, err := storage.GetRoleByName(ctx, roleName)
	require.NoError(t, err)

	u := &user.User{Username: name, Email: name + "@example.com", PasswordHash: "x", RoleID: role.ID}
	require.NoError(t, storage.CreateUser(ctx, u))
	return u
}

func ptr[T any](v T) *T {
	return &v
}

// fixedClock отдаёт заданное время и позволяет сдвигать его.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
