package check_availability

import "errors"

var (
	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("check_availability: invalid date")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
