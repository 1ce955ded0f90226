package postgres

import (
	"context"
	"fmt"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/board"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

func insertProject(ctx context.Context, q querier, p *board.Project) error {
	return queryRow(ctx, q,
		psql.Insert("projects").
			Columns("name", "code", "description").
			Values(p.Name, p.Code, p.Description).
			Suffix("RETURNING id, created_at"),
		&p.ID, &p.CreatedAt)
}

func (s *Storage) CreateProject(ctx context.Context, p *board.Project) error {
	if err := insertProject(ctx, s.pool, p); err != nil {
		logger.Error("Repository: Не удалось добавить проект", err)
		return fmt.Errorf("добавление проекта: %w", translate(err))
	}
	return nil
}

// CreateProjectWithBoard создаёт проект, его первую доску и колонки в одной транзакции.
func (s *Storage) CreateProjectWithBoard(ctx context.Context, p *board.Project, b *board.Board, columns []board.Column) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertProject(ctx, tx, p); err != nil {
			return err
		}
		b.ProjectID = p.ID
		return insertBoard(ctx, tx, b, columns)
	})
	if err != nil {
		logger.Error("Repository: Не удалось создать проект с доской", err)
		return fmt.Errorf("создание проекта: %w", translate(err))
	}
	return nil
}

func projectSelect() sq.SelectBuilder {
	return psql.Select("id", "name", "code", "description", "created_at").From("projects")
}

func (s *Storage) GetProject(ctx context.Context, id int64) (*board.Project, error) {
	return s.getProject(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetProjectByCode(ctx context.Context, code string) (*board.Project, error) {
	return s.getProject(ctx, sq.Eq{"code": code})
}

func (s *Storage) getProject(ctx context.Context, where sq.Eq) (*board.Project, error) {
	p := &board.Project{}
	err := queryRow(ctx, s.pool, projectSelect().Where(where),
		&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("получение проекта: %w", translate(err))
	}
	return p, nil
}

func (s *Storage) ListProjects(ctx context.Context) ([]*board.Project, error) {
	rows, err := query(ctx, s.pool, projectSelect().OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	defer rows.Close()

	projects := []*board.Project{}
	for rows.Next() {
		p := &board.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("сканирование проекта: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateBoard создаёт доску и её колонки в одной транзакции.
func (s *Storage) CreateBoard(ctx context.Context, b *board.Board, columns []board.Column) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return insertBoard(ctx, tx, b, columns)
	})
	if err != nil {
		logger.Error("Repository: Не удалось создать доску", err)
		return fmt.Errorf("создание доски: %w", translate(err))
	}
	return nil
}

func insertBoard(ctx context.Context, q querier, b *board.Board, columns []board.Column) error {
	err := queryRow(ctx, q,
		psql.Insert("boards").
			Columns("name", "project_id").
			Values(b.Name, b.ProjectID).
			Suffix("RETURNING id, created_at"),
		&b.ID, &b.CreatedAt)
	if err != nil {
		return err
	}
	for i := range columns {
		columns[i].BoardID = b.ID
		if err := insertColumn(ctx, q, &columns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) GetBoard(ctx context.Context, id int64) (*board.Board, error) {
	b := &board.Board{}
	err := queryRow(ctx, s.pool,
		psql.Select("id", "name", "project_id", "created_at").From("boards").Where(sq.Eq{"id": id}),
		&b.ID, &b.Name, &b.ProjectID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("получение доски: %w", translate(err))
	}
	return b, nil
}

func (s *Storage) ListBoardsByProject(ctx context.Context, projectID int64) ([]*board.Board, error) {
	rows, err := query(ctx, s.pool,
		psql.Select("id", "name", "project_id", "created_at").
			From("boards").
			Where(sq.Eq{"project_id": projectID}).
			OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("получение досок: %w", err)
	}
	defer rows.Close()

	boards := []*board.Board{}
	for rows.Next() {
		b := &board.Board{}
		if err := rows.Scan(&b.ID, &b.Name, &b.ProjectID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("сканирование доски: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func insertColumn(ctx context.Context, q querier, c *board.Column) error {
	return queryRow(ctx, q,
		psql.Insert("columns").
			Columns("name", "position", "board_id", "role").
			Values(c.Name, c.Order, c.BoardID, string(c.Role)).
			Suffix("RETURNING id, created_at"),
		&c.ID, &c.CreatedAt)
}

func (s *Storage) CreateColumn(ctx context.Context, c *board.Column) error {
	if err := insertColumn(ctx, s.pool, c); err != nil {
		logger.Error("Repository: Не удалось добавить колонку", err)
		return fmt.Errorf("добавление колонки: %w", translate(err))
	}
	return nil
}

func columnSelect() sq.SelectBuilder {
	return psql.Select("id", "name", "position", "board_id", "role", "created_at").From("columns")
}

func scanColumn(row interface{ Scan(...any) error }) (board.Column, error) {
	var c board.Column
	var role string
	err := row.Scan(&c.ID, &c.Name, &c.Order, &c.BoardID, &role, &c.CreatedAt)
	c.Role = board.ColumnRole(role)
	return c, err
}

func (s *Storage) GetColumn(ctx context.Context, id int64) (*board.Column, error) {
	sqlText, args, err := columnSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}
	c, err := scanColumn(s.pool.QueryRow(ctx, sqlText, args...))
	if err != nil {
		return nil, fmt.Errorf("получение колонки: %w", translate(err))
	}
	return &c, nil
}

func (s *Storage) ListColumnsByBoard(ctx context.Context, boardID int64) ([]board.Column, error) {
	rows, err := query(ctx, s.pool, columnSelect().Where(sq.Eq{"board_id": boardID}).OrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("получение колонок: %w", err)
	}
	defer rows.Close()

	columns := []board.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование колонки: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}
