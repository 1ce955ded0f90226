package service_test

import (
	"context"
	"testing"

	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/user"
	"kanbanTracker/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestAccessPredicates(t *testing.T) {
	manager := &user.User{ID: 1, Role: user.RoleManager}
	author := &user.User{ID: 2, Role: user.RoleExecutor}
	assignee := &user.User{ID: 3, Role: user.RoleExecutor}
	stranger := &user.User{ID: 4, Role: user.RoleExecutor}
	tk := &task.Task{ID: 10, AuthorID: author.ID, AssigneeID: ptr(assignee.ID)}

	type check func(*user.User, *task.Task) error
	tests := []struct {
		name    string
		check   check
		allowed []*user.User
		denied  []*user.User
	}{
		{name: "delete", check: service.CanDeleteTask, allowed: []*user.User{manager, author}, denied: []*user.User{assignee, stranger}},
		{name: "move", check: service.CanMoveTask, allowed: []*user.User{manager, author, assignee}, denied: []*user.User{stranger}},
		{name: "log time", check: service.CanLogTime, allowed: []*user.User{manager, assignee}, denied: []*user.User{author, stranger}},
		{name: "estimate", check: service.CanEstimate, allowed: []*user.User{manager, author}, denied: []*user.User{assignee, stranger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, u := range tt.allowed {
				assert.NoError(t, tt.check(u, tk), "user %d", u.ID)
			}
			for _, u := range tt.denied {
				assertCode(t, tt.check(u, tk), service.CodeForbidden)
			}
		})
	}
}

func TestAttributedUser(t *testing.T) {
	manager := &user.User{ID: 1, Role: user.RoleManager}
	executor := &user.User{ID: 2, Role: user.RoleExecutor}

	assert.Equal(t, int64(7), service.AttributedUser(manager, ptr(int64(7))))
	assert.Equal(t, int64(1), service.AttributedUser(manager, nil))
	assert.Equal(t, int64(2), service.AttributedUser(executor, ptr(int64(7))))
	assert.Equal(t, int64(2), service.AttributedUser(executor, nil))
}

func TestAccessGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gate := service.NewAccessGate(f.storage)

	u, err := gate.RequireAuthenticated(ctx, f.author.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = gate.RequireAuthenticated(ctx, 9999)
	assertCode(t, err, service.CodeUnauthenticated)

	_, err = gate.RequireManager(ctx, f.author.ID)
	assertCode(t, err, service.CodeForbidden)

	_, err = gate.RequireManager(ctx, f.manager.ID)
	assert.NoError(t, err)

	// смена роли действует со следующего вызова
	assert.NoError(t, f.storage.SetUserRole(ctx, f.author.ID, user.RoleManager))
	_, err = gate.RequireManager(ctx, f.author.ID)
	assert.NoError(t, err)
}
