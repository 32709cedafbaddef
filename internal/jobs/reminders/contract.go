package reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// BookingRepository источник бронирований на дату
type BookingRepository interface {
	ListIDsByDateAndStatus(ctx context.Context, date time.Time, status domain.Status) ([]int64, error)
}

// Notifier отправка напоминаний
type Notifier interface {
	BookingReminder(bookingID int64)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
