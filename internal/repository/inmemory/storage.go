package inmemory

import (
	"context"
	"sync"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/board"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
	"kanbanTracker/internal/models/user"
)

// Storage - хранилище в памяти с теми же гарантиями, что и postgres:
// уникальность кодов задач, каскадное удаление журнала при удалении задачи.
type Storage struct {
	mtx *sync.RWMutex

	roles    map[int64]*user.Role
	users    map[int64]*user.User
	projects map[int64]*board.Project
	boards   map[int64]*board.Board
	columns  map[int64]*board.Column
	tasks    map[int64]*task.Task
	logs     map[int64]*timelog.TimeLog

	// коды удалённых задач по проектам, чтобы номера не выдавались повторно
	retired map[int64][]string

	// порядок вставки, чтобы выдача была детерминированной
	taskIDs []int64
	logIDs  []int64

	seq int64
}

func NewStorage() *Storage {
	s := &Storage{
		mtx:      &sync.RWMutex{},
		roles:    make(map[int64]*user.Role),
		users:    make(map[int64]*user.User),
		projects: make(map[int64]*board.Project),
		boards:   make(map[int64]*board.Board),
		columns:  make(map[int64]*board.Column),
		tasks:    make(map[int64]*task.Task),
		logs:     make(map[int64]*timelog.TimeLog),
		retired:  make(map[int64][]string),
	}
	for _, name := range []string{user.RoleManager, user.RoleExecutor} {
		id := s.nextID()
		s.roles[id] = &user.Role{ID: id, Name: name}
	}
	return s
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *Storage) nextID() int64 {
	s.seq++
	return s.seq
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
