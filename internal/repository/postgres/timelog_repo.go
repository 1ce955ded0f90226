package postgres

import (
	"context"
	"fmt"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// LogTime сохраняет новые часы задачи и запись журнала в одной транзакции.
func (s *Storage) LogTime(ctx context.Context, t *task.Task, entry *timelog.TimeLog) error {
	start := time.Now()
	defer warnIfSlow("log_time", start, 100*time.Millisecond)

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := updateTask(ctx, tx, t); err != nil {
			return err
		}
		entry.TaskID = t.ID
		err := queryRow(ctx, tx,
			psql.Insert("time_logs").
				Columns("task_id", "user_id", "logged_by_id", "spent_hours", "remaining_hours", "comment", "created_at").
				Values(entry.TaskID, entry.UserID, entry.LoggedByID, entry.SpentHours, entry.RemainingHours, entry.Comment, createdAt).
				Suffix("RETURNING id, created_at"),
			&entry.ID, &entry.CreatedAt)
		if err != nil {
			return err
		}
		return s.refreshDerived(ctx, tx, t)
	})
	if err != nil {
		logger.Error("Repository: Не удалось списать время", err)
		return fmt.Errorf("списание времени: %w", translate(err))
	}
	return nil
}

func timeLogWhere(filter timelog.Filter) sq.And {
	where := sq.And{sq.Eq{"l.task_id": filter.TaskID}}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"l.user_id": *filter.UserID})
	}
	if filter.LoggedByID != nil {
		where = append(where, sq.Eq{"l.logged_by_id": *filter.LoggedByID})
	}
	if filter.From != nil {
		where = append(where, sq.GtOrEq{"l.created_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, sq.LtOrEq{"l.created_at": *filter.To})
	}
	return where
}

func (s *Storage) ListTimeLogs(ctx context.Context, filter timelog.Filter) ([]*timelog.TimeLog, int, error) {
	start := time.Now()
	defer warnIfSlow("list_time_logs", start, 200*time.Millisecond)

	where := timeLogWhere(filter)

	var total int
	if err := queryRow(ctx, s.pool, psql.Select("COUNT(*)").From("time_logs l").Where(where), &total); err != nil {
		logger.Error("Repository: Не удалось посчитать записи журнала", err)
		return nil, 0, fmt.Errorf("подсчёт записей журнала: %w", err)
	}

	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	b := psql.Select(
		"l.id", "l.task_id", "l.user_id", "l.logged_by_id", "l.spent_hours",
		"l.remaining_hours", "l.comment", "l.created_at",
		"COALESCE(u.username, '')", "COALESCE(lb.username, '')",
	).
		From("time_logs l").
		LeftJoin("users u ON u.id = l.user_id").
		LeftJoin("users lb ON lb.id = l.logged_by_id").
		Where(where).
		OrderBy("l.created_at "+order, "l.id "+order).
		Offset(uint64(filter.Offset()))
	if filter.PerPage > 0 {
		b = b.Limit(uint64(filter.PerPage))
	}

	rows, err := query(ctx, s.pool, b)
	if err != nil {
		logger.Error("Repository: Не удалось получить журнал времени", err)
		return nil, 0, fmt.Errorf("получение журнала: %w", err)
	}
	defer rows.Close()

	logs := []*timelog.TimeLog{}
	for rows.Next() {
		l := &timelog.TimeLog{}
		err := rows.Scan(&l.ID, &l.TaskID, &l.UserID, &l.LoggedByID, &l.SpentHours,
			&l.RemainingHours, &l.Comment, &l.CreatedAt, &l.Username, &l.LoggedBy)
		if err != nil {
			return nil, 0, fmt.Errorf("сканирование записи журнала: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("итерация по строкам: %w", err)
	}
	return logs, total, nil
}

func (s *Storage) TimeSummary(ctx context.Context, filter timelog.SummaryFilter) ([]timelog.SummaryRow, error) {
	start := time.Now()
	defer warnIfSlow("time_summary", start, 200*time.Millisecond)

	if filter.ColumnIDs != nil && len(filter.ColumnIDs) == 0 {
		return []timelog.SummaryRow{}, nil
	}

	where := sq.And{}
	b := psql.Select("l.user_id", "COALESCE(u.username, '')", "SUM(l.spent_hours)", "COUNT(l.id)").
		From("time_logs l").
		LeftJoin("users u ON u.id = l.user_id")
	if filter.ColumnIDs != nil {
		b = b.Join("tasks t ON t.id = l.task_id")
		where = append(where, sq.Eq{"t.column_id": filter.ColumnIDs})
	}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"l.user_id": *filter.UserID})
	}
	if filter.From != nil {
		where = append(where, sq.GtOrEq{"l.created_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, sq.LtOrEq{"l.created_at": *filter.To})
	}
	if len(where) > 0 {
		b = b.Where(where)
	}
	b = b.GroupBy("l.user_id", "u.username").OrderBy("SUM(l.spent_hours) DESC", "l.user_id")

	rows, err := query(ctx, s.pool, b)
	if err != nil {
		logger.Error("Repository: Не удалось построить сводку времени", err)
		return nil, fmt.Errorf("сводка времени: %w", err)
	}
	defer rows.Close()

	summary := []timelog.SummaryRow{}
	for rows.Next() {
		var row timelog.SummaryRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.TotalSpentHours, &row.LogCount); err != nil {
			return nil, fmt.Errorf("сканирование сводки: %w", err)
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}
