package service

import (
	"context"
	"errors"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/models/task"
	repo "kanbanTracker/internal/repository"

	"go.uber.org/zap"
)

// applyBestEffort применяет поле, ссылающееся на другую сущность.
// Если ссылка не разрешилась (repo.ErrNotFound), поле молча пропускается:
// так ведут себя assignee_id и column_id. Это единственное место, где
// неразрешённые ссылки игнорируются.
func applyBestEffort(ctx context.Context, t *task.Task, field string, resolve func(context.Context) (task.TaskOption, error)) error {
	opt, err := resolve(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Ссылка не найдена, поле пропущено",
				zap.String("field", field),
				zap.Int64("task_id", t.ID))
			return nil
		}
		return err
	}
	task.Apply(t, opt)
	return nil
}
