package inmemory

import (
	"context"
	"time"

	"kanbanTracker/internal/models/task"
	repo "kanbanTracker/internal/repository"
)

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.columns[taskToCreate.ColumnID]; !ok {
		return repo.ErrNotFound
	}
	for _, existing := range s.tasks {
		if existing.Code == taskToCreate.Code {
			return repo.ErrDuplicateCode
		}
	}

	taskToCreate.ID = s.nextID()
	taskToCreate.CreatedAt = stamp(taskToCreate.CreatedAt)
	taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	if taskToCreate.Priority == "" {
		taskToCreate.Priority = task.PriorityMedium
	}

	stored := *taskToCreate
	s.tasks[stored.ID] = &stored
	s.taskIDs = append(s.taskIDs, stored.ID)
	s.fillTask(taskToCreate)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.taskView(t), nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.updateLocked(taskToUpdate)
}

func (s *Storage) updateLocked(taskToUpdate *task.Task) error {
	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if _, ok := s.columns[taskToUpdate.ColumnID]; !ok {
		return repo.ErrNotFound
	}

	taskToUpdate.UpdatedAt = time.Now().UTC()
	// автор, код и дата создания не меняются
	taskToUpdate.AuthorID = existing.AuthorID
	taskToUpdate.Code = existing.Code
	taskToUpdate.CreatedAt = existing.CreatedAt

	stored := *taskToUpdate
	s.tasks[stored.ID] = &stored
	s.fillTask(taskToUpdate)
	return nil
}

// DeleteTask удаляет задачу вместе с её журналом времени, код задачи
// остаётся за проектом.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return repo.ErrNotFound
	}
	if projectID, ok := s.projectOfColumn(t.ColumnID); ok {
		s.retired[projectID] = append(s.retired[projectID], t.Code)
	}
	delete(s.tasks, id)
	for ind, val := range s.taskIDs {
		if val == id {
			s.taskIDs = append(s.taskIDs[:ind], s.taskIDs[ind+1:]...)
			break
		}
	}

	kept := s.logIDs[:0]
	for _, logID := range s.logIDs {
		if s.logs[logID].TaskID == id {
			delete(s.logs, logID)
			continue
		}
		kept = append(kept, logID)
	}
	s.logIDs = kept
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.AuthorID != nil && t.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.AssigneeID != nil && !t.IsAssignee(*filter.AssigneeID) {
			continue
		}
		if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		res = append(res, s.taskView(t))
	}
	return res, nil
}

func (s *Storage) ListTasksByColumn(ctx context.Context, columnID int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		if t := s.tasks[id]; t.ColumnID == columnID {
			res = append(res, s.taskView(t))
		}
	}
	return res, nil
}

// ListTaskCodesByProject проходит проект -> доски -> колонки -> задачи
// и добавляет коды удалённых задач проекта.
func (s *Storage) ListTaskCodesByProject(ctx context.Context, projectID int64) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	codes := []string{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if p, ok := s.projectOfColumn(t.ColumnID); ok && p == projectID {
			codes = append(codes, t.Code)
		}
	}
	codes = append(codes, s.retired[projectID]...)
	return codes, nil
}

func (s *Storage) projectOfColumn(columnID int64) (int64, bool) {
	c, ok := s.columns[columnID]
	if !ok {
		return 0, false
	}
	b, ok := s.boards[c.BoardID]
	if !ok {
		return 0, false
	}
	return b.ProjectID, true
}

func (s *Storage) taskView(t *task.Task) *task.Task {
	view := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		view.AssigneeID = &id
	}
	s.fillTask(&view)
	return &view
}

// fillTask заполняет производные поля: статус и имена пользователей.
func (s *Storage) fillTask(t *task.Task) {
	if c, ok := s.columns[t.ColumnID]; ok {
		t.Status = c.Name
	}
	if u, ok := s.users[t.AuthorID]; ok {
		t.Author = u.Username
	}
	t.Assignee = ""
	if t.AssigneeID != nil {
		if u, ok := s.users[*t.AssigneeID]; ok {
			t.Assignee = u.Username
		}
	}
}
