package main

import (
	"context"
	"fmt"
	"os"

	"kanbanTracker/internal/app"
	"kanbanTracker/internal/config"
	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/repository/postgres"
	"kanbanTracker/pkg/auth"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "kanban-tracker",
		Short:         "Трекер задач с канбан-досками и учётом времени",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "путь к config.yml")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := logger.Init(cfg.Logging.Development); err != nil {
			return nil, fmt.Errorf("инициализация логгера: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newTokenCmd(load),
	)
	return root
}

type configLoader func() (*config.Config, error)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			application := app.New(cfg)
			if err := application.Init(cmd.Context()); err != nil {
				return multiShutdown(application, err)
			}
			return application.Run(cmd.Context())
		},
	}
}

func multiShutdown(a *app.App, err error) error {
	if shutdownErr := a.Shutdown(); shutdownErr != nil {
		return fmt.Errorf("%w (shutdown: %v)", err, shutdownErr)
	}
	return err
}

func newMigrateCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление схемой PostgreSQL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Применить все миграции",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return postgres.Migrate(cfg.Database.URL)
		},
	}, &cobra.Command{
		Use:   "down",
		Short: "Откатить все миграции",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return postgres.Down(cfg.Database.URL)
		},
	})
	return cmd
}

func newTokenCmd(load configLoader) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить токен доступа для пользователя",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user-id должен быть положительным")
			}
			cfg, err := load()
			if err != nil {
				return err
			}

			token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL).Generate(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "id пользователя")
	return cmd
}
