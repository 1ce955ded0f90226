package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kanbanTracker/internal/logger"
	repo "kanbanTracker/internal/repository"

	"go.uber.org/zap"
)

// CodeGenerator выводит следующий код задачи из уже существующих кодов проекта.
// Счётчика нет: номер всегда max+1 по задачам проекта.
type CodeGenerator struct {
	catalog CatalogRepository
	tasks   TaskRepository
}

func NewCodeGenerator(catalog CatalogRepository, tasks TaskRepository) *CodeGenerator {
	return &CodeGenerator{catalog: catalog, tasks: tasks}
}

func (g *CodeGenerator) NextCode(ctx context.Context, projectCode string) (string, error) {
	project, err := g.catalog.GetProjectByCode(ctx, projectCode)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Service: Проект для генерации кода не найден", zap.String("project_code", projectCode))
			return "", NewGenerationError(projectCode, err)
		}
		return "", fmt.Errorf("получение проекта: %w", err)
	}

	codes, err := g.tasks.ListTaskCodesByProject(ctx, project.ID)
	if err != nil {
		return "", fmt.Errorf("получение кодов задач: %w", err)
	}
	return nextCode(project.Code, codes), nil
}

// nextCode: коды с префиксом проекта, номер - второй сегмент через '-',
// нечисловые пропускаются.
func nextCode(projectCode string, codes []string) string {
	highest := 0
	for _, code := range codes {
		if !strings.HasPrefix(code, projectCode) {
			continue
		}
		parts := strings.Split(code, "-")
		if len(parts) < 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%03d", projectCode, highest+1)
}
