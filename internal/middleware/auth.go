package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"kanbanTracker/internal/logger"
	"kanbanTracker/pkg/auth"

	"go.uber.org/zap"
)

const UserIDKey contextKey = "user_id"

// IdentityResolver превращает токен в id пользователя.
type IdentityResolver interface {
	ResolveIdentity(token string) (int64, error)
}

// Authenticate требует заголовок "Authorization: Bearer <token>" и кладёт
// id пользователя в контекст. Роль здесь не проверяется: её читает сервис.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthenticated(w, r, err)
				return
			}

			userID, err := resolver.ResolveIdentity(token)
			if err != nil {
				unauthenticated(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// WithUserID кладёт id пользователя в контекст в обход токена.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func unauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("HTTP: Запрос без валидного токена",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   "UNAUTHENTICATED",
		"message": "Требуется аутентификация",
		"details": map[string]any{},
	})
}
