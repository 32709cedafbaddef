package update_booking_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgUnknownStatus      = "неизвестный статус бронирования"
	msgInvalidTransition  = "переход в этот статус недопустим"
	msgConcurrentUpdate   = "бронирование было изменено, повторите запрос"
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

// Handle PUT /api/v1/admin/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /admin/bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrUnknownStatus):
			h.logger.Warn("PUT /admin/bookings/{id}/status - Unknown status: booking_id=%d, status=%q",
				bookingID, req.Status)
			handlers.RespondBadRequest(w, msgUnknownStatus)

		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PUT /admin/bookings/{id}/status - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PUT /admin/bookings/{id}/status - Invalid transition: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, bookings.ErrConcurrentUpdate):
			h.logger.Warn("PUT /admin/bookings/{id}/status - Concurrent update: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		default:
			h.logger.Error("PUT /admin/bookings/{id}/status - Failed to update status: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/bookings/{id}/status - Status updated: booking_id=%d, status=%s",
		bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
