package app_test

import (
	"context"
	"testing"
	"time"

	"kanbanTracker/internal/app"
	"kanbanTracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: "0", ShutdownTimeout: time.Second},
		Repository: config.RepositoryConfig{Type: "inmemory"},
		Auth:       config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Hour},
		Tasks:      config.TasksConfig{CodeRetries: 3},
		TimeLogs:   config.TimeLogsConfig{DefaultPerPage: 20, MaxPerPage: 100},
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := app.New(testConfig())
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("приложение не остановилось")
	}
}

func TestApp_UnknownRepository(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = "mongo"

	a := app.New(cfg)
	assert.Error(t, a.Init(context.Background()))
	assert.NoError(t, a.Shutdown())
}
