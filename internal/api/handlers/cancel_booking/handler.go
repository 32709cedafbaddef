package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgCannotCancel     = "отменить можно только запланированное бронирование"
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

// Handle PUT /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /bookings/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err = h.service.Cancel(r.Context(), bookingID, customerID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PUT /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PUT /bookings/{id}/cancel - Access denied: booking_id=%d, customer_id=%d",
				bookingID, customerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PUT /bookings/{id}/cancel - Cannot cancel: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotCancel)

		default:
			h.logger.Error("PUT /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, customer_id=%d",
		bookingID, customerID)
	handlers.RespondJSON(w, http.StatusOK, CancelBookingResponse{ID: bookingID, Status: string(domain.StatusCancelled)})
}
