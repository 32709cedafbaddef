package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.Status) error
	LockDay(ctx context.Context, date time.Time) error
	CountActiveByDate(ctx context.Context, date time.Time) (int, error)
	Reschedule(ctx context.Context, id int64, date time.Time, t types.TimeString) error
	HasActiveByVehicle(ctx context.Context, vehicleID int64) (bool, error)
	HasActiveByCustomer(ctx context.Context, customerID int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProofStore хранилище подтверждений оплаты (допускается nil)
type ProofStore interface {
	Remove(ctx context.Context, ref string) error
}

// Notifier асинхронная отправка уведомлений клиенту
type Notifier interface {
	BookingCancelled(bookingID int64)
	StatusChanged(bookingID int64, status domain.Status)
}

// MetricsRecorder бизнес-метрики (допускается nil)
type MetricsRecorder interface {
	StatusTransition(from, to, actor string)
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
