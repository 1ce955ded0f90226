package handlers

import (
	"context"
	"net/http"
	"time"

	"kanbanTracker/internal/logger"
)

const serviceName = "kanban-tracker"

type HealthChecker interface {
	HealthCheck(context.Context) error
}

func HealthCheck(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.HttpRequestInfo(r, "HTTP: Health check")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.HealthCheck(ctx); err != nil {
			logger.Error("HTTP: Health check не пройден", err)
			responseWithJSON(w, http.StatusServiceUnavailable,
				toPayload("status", "unhealthy"),
				toPayload("service", serviceName))
			return
		}
		responseWithJSON(w, http.StatusOK,
			toPayload("status", "ok"),
			toPayload("service", serviceName))
	}
}
