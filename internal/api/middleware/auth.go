package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"

	// HeaderUserID идентификатор пользователя, проставляет шлюз аутентификации
	HeaderUserID = "X-User-ID"
	// HeaderUserRole роль пользователя
	HeaderUserRole = "X-User-Role"

	// HeaderServiceToken общий секрет для межсервисных вызовов
	HeaderServiceToken = "X-Service-Token"

	// RoleOperator роль сотрудника мастерской
	RoleOperator = "operator"

	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidUserID = "некорректный ID пользователя"
	msgOperatorOnly  = "доступно только оператору"

	msgMissingServiceToken = "отсутствует сервисный токен"
	msgInvalidServiceToken = "неверный сервисный токен"
	msgInternalDisabled    = "внутренний API отключен"
)

// Auth читает X-User-ID и кладет его в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if raw == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Operator пропускает только запросы с ролью operator, ставится после Auth
func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(userRoleKey).(string); role != RoleOperator {
			handlers.RespondForbidden(w, msgOperatorOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServiceToken пропускает только запросы с заголовком X-Service-Token, равным token.
// При пустом token все запросы отклоняются.
func ServiceToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				handlers.RespondForbidden(w, msgInternalDisabled)
				return
			}

			got := r.Header.Get(HeaderServiceToken)
			if got == "" {
				handlers.RespondUnauthorized(w, msgMissingServiceToken)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				handlers.RespondForbidden(w, msgInvalidServiceToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// WithUserID кладет ID пользователя в контекст (для тестов обработчиков)
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
