package create_booking

import "errors"

var (
	// ErrMissingField возвращается, когда не заполнено обязательное поле
	ErrMissingField = errors.New("create_booking: required field is missing")

	// ErrInvalidDate возвращается, когда дата не в формате YYYY-MM-DD
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidComplaint возвращается, когда описание проблемы слишком длинное
	ErrInvalidComplaint = errors.New("create_booking: complaint is too long")

	// ErrPaymentProofRequired возвращается при безналичной оплате без подтверждения
	ErrPaymentProofRequired = errors.New("create_booking: payment proof is required for non-cash payment")

	// ErrSlotFull возвращается, когда на дату не осталось мест
	ErrSlotFull = errors.New("create_booking: no capacity left for this date")

	// ErrDayContended возвращается, когда транзакция не прошла из-за параллельных записей на ту же дату
	ErrDayContended = errors.New("create_booking: too many concurrent bookings for this date, try again")

	// ErrInvalidProductPayload возвращается, когда список товаров не разбирается
	ErrInvalidProductPayload = errors.New("create_booking: invalid product payload")

	// ErrProductMissingFields возвращается, когда у товара нет id или цены
	ErrProductMissingFields = errors.New("create_booking: product is missing id or price")

	// ErrProductNotInService возвращается, когда товар не относится к выбранной услуге
	ErrProductNotInService = errors.New("create_booking: product does not belong to the service")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidReference возвращается, когда автомобиль, клиент или товар не существуют в БД
	ErrInvalidReference = errors.New("create_booking: invalid vehicle or service reference")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
