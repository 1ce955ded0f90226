package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kanbanTracker/internal/config"
	"kanbanTracker/internal/handlers"
	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/repository/inmemory"
	"kanbanTracker/internal/repository/postgres"
	"kanbanTracker/internal/service"
	"kanbanTracker/pkg/auth"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	repository service.Repository
	tokens     *auth.TokenManager
	shutdowns  []func() error // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown(func() error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		return err
	}

	a.tokens = auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.AccessTokenTTL)

	tasks := service.NewTaskService(a.repository, service.WithCodeRetries(a.config.Tasks.CodeRetries))
	times := service.NewTimeService(a.repository,
		service.WithPaging(a.config.TimeLogs.DefaultPerPage, a.config.TimeLogs.MaxPerPage))

	router := handlers.NewRouter(handlers.RouterConfig{
		CORSOrigins:  a.config.HTTP.CORSOrigins,
		RateLimitRPM: a.config.HTTP.RateLimitRPM,
	}, handlers.Services{
		Tasks:   tasks,
		Times:   times,
		Auth:    service.NewAuthService(a.repository, a.tokens),
		Catalog: service.NewCatalogService(a.repository),
		Tokens:  a.tokens,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(router, "kanban-tracker"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case "postgres":
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
			MaxConns:    int32(a.config.Database.MaxConnections),
			MinConns:    int32(a.config.Database.MinConnections),
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к БД: %w", err)
		}
		a.repository = storage
		a.onShutdown(func() error {
			logger.Info("Закрытие пула соединений PostgreSQL...")
			storage.Close()
			return nil
		})
	case "inmemory":
		a.repository = inmemory.NewStorage()
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", a.config.Repository.Type)
	}
	return nil
}

func (a *App) onShutdown(fn func() error) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Run обслуживает запросы до отмены ctx или сигнала SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Получен сигнал остановки, завершаем работу...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	return multierr.Append(err, a.Shutdown())
}

// Shutdown освобождает ресурсы, собирая все ошибки.
func (a *App) Shutdown() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.Server.ShutdownTimeout > 0 {
		return a.config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
