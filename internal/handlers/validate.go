package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"kanbanTracker/internal/logger"
	"kanbanTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// timestampLayouts - принимаемые форматы дат в query параметрах.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON читает тело запроса; пишет ответ 400 и возвращает false при ошибке.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength != 0 && r.Header.Get("Content-Type") != "" && !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "Content-Type должен быть application/json")
		return false
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("пустое тело запроса")
		}
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

// pathID читает положительный целый id из пути.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, ok := parseID(raw)
	if !ok {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("param", name),
			zap.String("value", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, fmt.Sprintf("неверное значение %s", name))
		return 0, false
	}
	return id, true
}

// queryID читает необязательный id из query. Отсутствие - nil, мусор - ошибка.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		return nil, service.NewValidationError(name, "ожидается положительное целое число")
	}
	return &id, nil
}

// parseID принимает только десятичные цифры: cast трактует ведущий ноль как
// восьмеричную запись.
func parseID(raw string) (int64, bool) {
	if raw == "" || strings.Trim(raw, "0123456789") != "" {
		return 0, false
	}
	id, err := cast.ToInt64E(strings.TrimLeft(raw, "0"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	if strings.Trim(raw, "0123456789") != "" {
		return 0
	}
	return cast.ToInt(strings.TrimLeft(raw, "0"))
}

func queryBool(r *http.Request, name string) bool {
	return cast.ToBool(strings.ToLower(r.URL.Query().Get(name)))
}

// queryTime разбирает дату; нераспознанное значение молча игнорируется.
func queryTime(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	ts, ok := parseTimestamp(raw)
	if !ok {
		logger.Debug("HTTP: Дата не распознана, фильтр пропущен",
			zap.String("param", name), zap.String("value", raw))
		return nil
	}
	return &ts
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
