package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingField       = "укажите дату и время"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgInPast             = "нельзя перенести запись на прошедшее время"
	msgTooFarAhead        = "дата записи слишком далеко в будущем"
	msgClosedDay          = "в выбранный день мастерская не работает"
	msgOutsideHours       = "выбранное время вне часов работы мастерской"
	msgSlotFull           = "на выбранную дату нет свободных мест"
	msgDayContended       = "на эту дату сейчас много записей, попробуйте еще раз"
	msgNotFound           = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/admin/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /admin/bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.Reschedule(r.Context(), bookingID, &req)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			h.logger.Warn("PUT /admin/bookings/{id} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		if msg, status, ok := mapError(err); ok {
			h.logger.Warn("PUT /admin/bookings/{id} - Rejected: booking_id=%d, date=%s, error=%v",
				bookingID, req.Date, err)
			handlers.RespondError(w, status, msg)
			return
		}
		h.logger.Error("PUT /admin/bookings/{id} - Failed to reschedule: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PUT /admin/bookings/{id} - Booking rescheduled: booking_id=%d, date=%s, time=%s",
		bookingID, booking.Date, booking.Time)
	handlers.RespondJSON(w, http.StatusOK, booking)
}

func mapError(err error) (string, int, bool) {
	switch {
	case errors.Is(err, bookings.ErrMissingField):
		return msgMissingField, http.StatusBadRequest, true
	case errors.Is(err, bookings.ErrInvalidDate):
		return msgInvalidDate, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return msgInvalidTime, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInPast):
		return msgInPast, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrTooFarAhead):
		return msgTooFarAhead, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrClosedDay):
		return msgClosedDay, http.StatusBadRequest, true
	case errors.Is(err, domain.ErrOutsideOperatingHours):
		return msgOutsideHours, http.StatusBadRequest, true
	case errors.Is(err, bookings.ErrSlotFull):
		return msgSlotFull, http.StatusConflict, true
	case errors.Is(err, bookings.ErrDayContended):
		return msgDayContended, http.StatusConflict, true
	default:
		return "", 0, false
	}
}
