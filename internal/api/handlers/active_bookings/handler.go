package active_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
)

const (
	msgInvalidVehicleID  = "некорректный ID мотоцикла"
	msgInvalidCustomerID = "некорректный ID клиента"
)

// Handler ответы для соседних сервисов: есть ли у мотоцикла или клиента активные записи
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

// ByVehicle GET /internal/vehicles/{vehicleId}/active-bookings
func (h *Handler) ByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := handlers.PathInt64(r, "vehicleId")
	if err != nil {
		h.logger.Warn("GET /internal/vehicles/{id}/active-bookings - Invalid vehicle ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVehicleID)
		return
	}

	result, err := h.service.HasActiveByVehicle(r.Context(), vehicleID)
	if err != nil {
		h.logger.Error("GET /internal/vehicles/{id}/active-bookings - Failed: vehicle_id=%d, error=%v", vehicleID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ByCustomer GET /internal/customers/{customerId}/active-bookings
func (h *Handler) ByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := handlers.PathInt64(r, "customerId")
	if err != nil {
		h.logger.Warn("GET /internal/customers/{id}/active-bookings - Invalid customer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCustomerID)
		return
	}

	result, err := h.service.HasActiveByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Error("GET /internal/customers/{id}/active-bookings - Failed: customer_id=%d, error=%v", customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
