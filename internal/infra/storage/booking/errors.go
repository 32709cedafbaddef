package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrForeignKeyViolation возвращается, когда клиент, автомобиль, услуга или товар не существуют
	ErrForeignKeyViolation = errors.New("booking.repository: referenced entity does not exist")

	// ErrStatusConflict возвращается, когда статус бронирования изменился с момента чтения
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrNotInTransaction возвращается, когда операция требует активной транзакции
	ErrNotInTransaction = errors.New("booking.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
