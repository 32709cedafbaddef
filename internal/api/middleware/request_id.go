package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	requestIDKey contextKey = "requestID"

	// HeaderRequestID сквозной идентификатор запроса
	HeaderRequestID = "X-Request-ID"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// RequestID берет X-Request-ID из запроса или генерирует новый
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID возвращает ID запроса из контекста
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// AccessLog пишет строку лога на каждый запрос
func AccessLog(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("%s %s - %d request_id=%s", r.Method, r.URL.Path, rec.status, GetRequestID(r.Context()))
		})
	}
}
