package notifier

import (
	"context"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// ViewRepository источник данных для сообщения
type ViewRepository interface {
	GetNotificationView(ctx context.Context, id int64) (*domain.NotificationView, error)
}

// Sender канал доставки текстовых сообщений
type Sender interface {
	Send(ctx context.Context, address, text string) error
}

// MetricsRecorder метрики доставки (допускается nil)
type MetricsRecorder interface {
	NotificationSent(kind string)
	NotificationFailed(kind string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
