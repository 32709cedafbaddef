package messaging

import "context"

// Transport соединение с внешним шлюзом сообщений
//
// Connect устанавливает соединение и возвращает канал, в который придет
// ошибка при его потере. Publish вызывается только после успешного Connect.
type Transport interface {
	Connect(ctx context.Context) (<-chan error, error)
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// StateRecorder метрика состояния канала (допускается nil)
type StateRecorder interface {
	ChannelState(current string, all []string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
