package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgMissingField        = "заполните все обязательные поля"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime         = "некорректный формат времени, ожидается HH:MM"
	msgInvalidComplaint    = "описание проблемы слишком длинное"
	msgPaymentProof        = "для безналичной оплаты загрузите подтверждение оплаты"
	msgInPast              = "нельзя записаться на прошедшее время"
	msgTooFarAhead         = "дата записи слишком далеко в будущем"
	msgClosedDay           = "в выбранный день мастерская не работает"
	msgOutsideHours        = "выбранное время вне часов работы мастерской"
	msgSlotFull            = "на выбранную дату нет свободных мест"
	msgDayContended        = "на эту дату сейчас много записей, попробуйте еще раз"
	msgInvalidProducts     = "некорректный формат списка товаров"
	msgProductMissing      = "у каждого товара должны быть id и цена"
	msgProductNotInService = "товар не относится к выбранной услуге"
	msgServiceNotFound     = "услуга не найдена"
	msgInvalidReference    = "мотоцикл или услуга не найдены"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(customerID))
	if err != nil {
		if msg, status, ok := mapError(err); ok {
			h.logger.Warn("POST /bookings - Rejected: customer_id=%d, date=%s, error=%v", customerID, req.Date, err)
			handlers.RespondError(w, status, msg)
			return
		}
		h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, error=%v", customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, customer_id=%d",
		result.ID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

func mapError(err error) (string, int, bool) {
	switch {
	case errors.Is(err, createBooking.ErrMissingField):
		return msgMissingField, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrInvalidDate):
		return msgInvalidDate, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return msgInvalidTime, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrInvalidComplaint):
		return msgInvalidComplaint, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrPaymentProofRequired):
		return msgPaymentProof, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInPast):
		return msgInPast, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrTooFarAhead):
		return msgTooFarAhead, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrClosedDay):
		return msgClosedDay, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrOutsideOperatingHours):
		return msgOutsideHours, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrSlotFull):
		return msgSlotFull, http.StatusConflict, true
	case errors.Is(err, createBooking.ErrDayContended):
		return msgDayContended, http.StatusConflict, true
	case errors.Is(err, createBooking.ErrInvalidProductPayload):
		return msgInvalidProducts, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrProductMissingFields):
		return msgProductMissing, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrProductNotInService):
		return msgProductNotInService, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrServiceNotFound):
		return msgServiceNotFound, http.StatusBadRequest, true
	case errors.Is(err, createBooking.ErrInvalidReference):
		return msgInvalidReference, http.StatusBadRequest, true
	default:
		return "", 0, false
	}
}
