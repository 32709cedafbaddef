package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockDay(ctx context.Context, date time.Time) error
	CountActiveByDate(ctx context.Context, date time.Time) (int, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CreateLineItems(ctx context.Context, bookingID int64, items []domain.LineItem) error
}

// CatalogRepository интерфейс каталога услуг и товаров
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetProducts(ctx context.Context, serviceID int64, productIDs []int64) ([]domain.Product, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier асинхронная отправка уведомлений клиенту
type Notifier interface {
	BookingCreated(bookingID int64)
}

// MetricsRecorder бизнес-метрики (допускается nil)
type MetricsRecorder interface {
	BookingCreated(paymentMethod string)
	BookingRejected(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
