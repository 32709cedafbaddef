package check_availability

import (
	"context"
	"time"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountActiveByDate(ctx context.Context, date time.Time) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
