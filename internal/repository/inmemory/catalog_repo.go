package inmemory

import (
	"context"
	"sort"

	"kanbanTracker/internal/models/board"
	repo "kanbanTracker/internal/repository"
)

func (s *Storage) CreateProject(ctx context.Context, p *board.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.insertProject(p)
}

// CreateProjectWithBoard создаёт проект вместе с первой доской под одной блокировкой.
func (s *Storage) CreateProjectWithBoard(ctx context.Context, p *board.Project, b *board.Board, columns []board.Column) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.insertProject(p); err != nil {
		return err
	}
	b.ProjectID = p.ID
	s.insertBoard(b, columns)
	return nil
}

func (s *Storage) insertProject(p *board.Project) error {
	for _, existing := range s.projects {
		if existing.Code == p.Code {
			return repo.ErrDuplicate
		}
	}
	p.ID = s.nextID()
	p.CreatedAt = stamp(p.CreatedAt)
	stored := *p
	s.projects[p.ID] = &stored
	return nil
}

func (s *Storage) GetProject(ctx context.Context, id int64) (*board.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *p
	return &res, nil
}

func (s *Storage) GetProjectByCode(ctx context.Context, code string) (*board.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, p := range s.projects {
		if p.Code == code {
			res := *p
			return &res, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) ListProjects(ctx context.Context) ([]*board.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*board.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Storage) CreateBoard(ctx context.Context, b *board.Board, columns []board.Column) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[b.ProjectID]; !ok {
		return repo.ErrNotFound
	}
	s.insertBoard(b, columns)
	return nil
}

func (s *Storage) insertBoard(b *board.Board, columns []board.Column) {
	b.ID = s.nextID()
	b.CreatedAt = stamp(b.CreatedAt)
	stored := *b
	s.boards[b.ID] = &stored

	for _, c := range columns {
		c.ID = s.nextID()
		c.BoardID = b.ID
		c.CreatedAt = stamp(c.CreatedAt)
		s.columns[c.ID] = &c
	}
}

func (s *Storage) GetBoard(ctx context.Context, id int64) (*board.Board, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	b, ok := s.boards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *b
	return &res, nil
}

func (s *Storage) ListBoardsByProject(ctx context.Context, projectID int64) ([]*board.Board, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*board.Board{}
	for _, b := range s.boards {
		if b.ProjectID == projectID {
			cp := *b
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Storage) CreateColumn(ctx context.Context, c *board.Column) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.boards[c.BoardID]; !ok {
		return repo.ErrNotFound
	}
	for _, existing := range s.columns {
		if existing.BoardID == c.BoardID && existing.Order == c.Order {
			return repo.ErrDuplicate
		}
	}
	c.ID = s.nextID()
	c.CreatedAt = stamp(c.CreatedAt)
	stored := *c
	s.columns[c.ID] = &stored
	return nil
}

func (s *Storage) GetColumn(ctx context.Context, id int64) (*board.Column, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.columns[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *c
	return &res, nil
}

func (s *Storage) ListColumnsByBoard(ctx context.Context, boardID int64) ([]board.Column, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.columnsOf(boardID), nil
}

func (s *Storage) columnsOf(boardID int64) []board.Column {
	res := []board.Column{}
	for _, c := range s.columns {
		if c.BoardID == boardID {
			res = append(res, *c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Order < res[j].Order })
	return res
}
