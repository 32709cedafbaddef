package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому клиенту
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается, когда переход статуса запрещен
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentUpdate возвращается, когда статус успели изменить параллельно
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	// ErrUnknownStatus возвращается для статуса вне списка известных
	ErrUnknownStatus = errors.New("unknown booking status")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrMissingField возвращается при отсутствии обязательного поля
	ErrMissingField = errors.New("missing required field")

	// ErrSlotFull возвращается, когда на целевую дату нет мест
	ErrSlotFull = errors.New("no free slots on this date")

	// ErrDayContended возвращается, когда перенос не прошел из-за параллельных записей на дату
	ErrDayContended = errors.New("too many concurrent changes for this date, try again")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
