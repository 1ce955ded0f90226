package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/task"
	repo "kanbanTracker/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func taskSelect() sq.SelectBuilder {
	return psql.Select(
		"t.id", "t.code", "t.title", "t.description", "t.priority",
		"t.estimated_time", "t.remaining_time", "t.spent_time",
		"t.author_id", "t.assignee_id", "t.column_id",
		"t.created_at", "t.updated_at", "t.started_at", "t.completed_at",
		"c.name", "COALESCE(a.username, '')", "COALESCE(e.username, '')",
	).
		From("tasks t").
		Join("columns c ON c.id = t.column_id").
		LeftJoin("users a ON a.id = t.author_id").
		LeftJoin("users e ON e.id = t.assignee_id")
}

func scanTask(row interface{ Scan(...any) error }) (*task.Task, error) {
	t := &task.Task{}
	var priority string
	err := row.Scan(
		&t.ID, &t.Code, &t.Title, &t.Description, &priority,
		&t.EstimatedTime, &t.RemainingTime, &t.SpentTime,
		&t.AuthorID, &t.AssigneeID, &t.ColumnID,
		&t.CreatedAt, &t.UpdatedAt, &t.StartedAt, &t.CompletedAt,
		&t.Status, &t.Author, &t.Assignee,
	)
	t.Priority = task.Priority(priority)
	return t, err
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create_task", start, 50*time.Millisecond)

	if taskToCreate.Priority == "" {
		taskToCreate.Priority = task.PriorityMedium
	}
	createdAt := taskToCreate.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := queryRow(ctx, s.pool,
		psql.Insert("tasks").
			Columns("code", "title", "description", "priority",
				"estimated_time", "remaining_time", "spent_time",
				"author_id", "assignee_id", "column_id", "created_at", "updated_at").
			Values(taskToCreate.Code, taskToCreate.Title, taskToCreate.Description, string(taskToCreate.Priority),
				taskToCreate.EstimatedTime, taskToCreate.RemainingTime, taskToCreate.SpentTime,
				taskToCreate.AuthorID, taskToCreate.AssigneeID, taskToCreate.ColumnID, createdAt, createdAt).
			Suffix("RETURNING id, created_at, updated_at"),
		&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)
	if err != nil {
		err = translate(err)
		if errors.Is(err, repo.ErrDuplicateCode) {
			logger.Warn("Repository: Код задачи уже занят", zap.String("code", taskToCreate.Code))
		} else {
			logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		}
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return s.refreshDerived(ctx, s.pool, taskToCreate)
}

// refreshDerived подтягивает статус и имена пользователей после записи.
func (s *Storage) refreshDerived(ctx context.Context, q querier, t *task.Task) error {
	err := queryRow(ctx, q,
		psql.Select("c.name", "COALESCE(a.username, '')", "COALESCE(e.username, '')").
			From("tasks t").
			Join("columns c ON c.id = t.column_id").
			LeftJoin("users a ON a.id = t.author_id").
			LeftJoin("users e ON e.id = t.assignee_id").
			Where(sq.Eq{"t.id": t.ID}),
		&t.Status, &t.Author, &t.Assignee)
	if err != nil {
		return fmt.Errorf("производные поля задачи: %w", translate(err))
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get_task", start, 100*time.Millisecond)

	sqlText, args, err := taskSelect().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}
	t, err := scanTask(s.pool.QueryRow(ctx, sqlText, args...))
	if err != nil {
		return nil, fmt.Errorf("получение задачи: %w", translate(err))
	}
	return t, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("update_task", start, 100*time.Millisecond)

	if err := updateTask(ctx, s.pool, taskToUpdate); err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return s.refreshDerived(ctx, s.pool, taskToUpdate)
}

func updateTask(ctx context.Context, q querier, t *task.Task) error {
	err := queryRow(ctx, q,
		psql.Update("tasks").
			Set("title", t.Title).
			Set("description", t.Description).
			Set("priority", string(t.Priority)).
			Set("estimated_time", t.EstimatedTime).
			Set("remaining_time", t.RemainingTime).
			Set("spent_time", t.SpentTime).
			Set("assignee_id", t.AssigneeID).
			Set("column_id", t.ColumnID).
			Set("started_at", t.StartedAt).
			Set("completed_at", t.CompletedAt).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": t.ID}).
			Suffix("RETURNING updated_at"),
		&t.UpdatedAt)
	return translate(err)
}

// DeleteTask удаляет задачу и запоминает её код за проектом в одной транзакции.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	start := time.Now()
	defer warnIfSlow("delete_task", start, 100*time.Millisecond)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var code string
		var projectID int64
		err := queryRow(ctx, tx,
			psql.Select("t.code", "b.project_id").
				From("tasks t").
				Join("columns c ON c.id = t.column_id").
				Join("boards b ON b.id = c.board_id").
				Where(sq.Eq{"t.id": id}).
				Suffix("FOR UPDATE OF t"),
			&code, &projectID)
		if err != nil {
			return err
		}

		retire, args, err := psql.Insert("retired_task_codes").
			Columns("code", "project_id").
			Values(code, projectID).
			Suffix("ON CONFLICT (code) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("сборка запроса: %w", err)
		}
		if _, err := tx.Exec(ctx, retire, args...); err != nil {
			return fmt.Errorf("сохранение кода: %w", err)
		}

		sqlText, args, err := psql.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("сборка запроса: %w", err)
		}
		_, err = tx.Exec(ctx, sqlText, args...)
		return err
	})
	if err != nil {
		err = translate(err)
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Error("Repository: Не удалось удалить задачу", err, zap.Int64("task_id", id))
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	where := sq.And{}
	if filter.Priority != nil {
		where = append(where, sq.Eq{"t.priority": string(*filter.Priority)})
	}
	if filter.AuthorID != nil {
		where = append(where, sq.Eq{"t.author_id": *filter.AuthorID})
	}
	if filter.AssigneeID != nil {
		where = append(where, sq.Eq{"t.assignee_id": *filter.AssigneeID})
	}
	if filter.CreatedFrom != nil {
		where = append(where, sq.GtOrEq{"t.created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		where = append(where, sq.LtOrEq{"t.created_at": *filter.CreatedTo})
	}

	b := taskSelect().OrderBy("t.id")
	if len(where) > 0 {
		b = b.Where(where)
	}
	return s.listTasks(ctx, b)
}

func (s *Storage) ListTasksByColumn(ctx context.Context, columnID int64) ([]*task.Task, error) {
	return s.listTasks(ctx, taskSelect().Where(sq.Eq{"t.column_id": columnID}).OrderBy("t.id"))
}

func (s *Storage) listTasks(ctx context.Context, b sq.SelectBuilder) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("list_tasks", start, 200*time.Millisecond)

	rows, err := query(ctx, s.pool, b)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

// ListTaskCodesByProject отдаёт коды живых задач проекта и коды удалённых.
func (s *Storage) ListTaskCodesByProject(ctx context.Context, projectID int64) ([]string, error) {
	live := psql.Select("t.code").
		From("tasks t").
		Join("columns c ON c.id = t.column_id").
		Join("boards b ON b.id = c.board_id").
		Where(sq.Eq{"b.project_id": projectID})
	// вложенный запрос собирается с '?', нумерацию $n делает внешний
	retired := sq.Select("code").
		From("retired_task_codes").
		Where(sq.Eq{"project_id": projectID})

	rows, err := query(ctx, s.pool, live.Suffix("UNION ALL").SuffixExpr(retired))
	if err != nil {
		return nil, fmt.Errorf("получение кодов задач: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("сканирование кода: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
