package get_customer_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
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

// Handle GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetCustomerBookings(r.Context(), customerID)
	if err != nil {
		h.logger.Error("GET /bookings - Failed to get bookings: customer_id=%d, error=%v", customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
