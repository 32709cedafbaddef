package messaging

import "errors"

var (
	// ErrNotReady возвращается, когда канал не готов к отправке
	ErrNotReady = errors.New("messaging channel is not ready")

	// ErrSendFailed возвращается, когда шлюз не принял сообщение
	ErrSendFailed = errors.New("messaging: send failed")

	// ErrConnectionLost приходит в канал потери соединения
	ErrConnectionLost = errors.New("messaging: connection lost")

	// ErrUnauthorized возвращается, когда шлюз отклонил токен или сессия не авторизована
	ErrUnauthorized = errors.New("messaging: gateway session is not authorized")

	// ErrInvalidResponse возвращается при некорректном ответе шлюза
	ErrInvalidResponse = errors.New("messaging: invalid gateway response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("messaging: internal error")
)
