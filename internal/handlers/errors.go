package handlers

import (
	"errors"
	"net/http"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/service"

	"go.uber.org/zap"
)

const codeInternal = "INTERNAL_ERROR"

// handleServiceError отвечает клиенту по ошибке сервиса: бизнес-ошибки
// отображаются в свой статус, остальные становятся 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		fields := []zap.Field{
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode),
		}
		if statusCode >= http.StatusInternalServerError {
			logger.Error("HTTP: Бизнес-ошибка", err, fields...)
		} else {
			logger.Warn("HTTP: Бизнес-ошибка", fields...)
		}

		details := businessErr.Details
		if details == nil {
			details = map[string]any{}
		}
		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", details),
		)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, codeInternal, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeInvalidAmount, service.CodeNoColumns:
		return http.StatusBadRequest
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeDuplicateCode, service.CodeConflict:
		return http.StatusConflict
	case service.CodeCodeGenerationFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
