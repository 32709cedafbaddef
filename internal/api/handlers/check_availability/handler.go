package check_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/check_availability"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/availability?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	result, err := h.useCase.Execute(r.Context(), &checkAvailability.Request{Date: date})
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidDate):
			h.logger.Warn("GET /bookings/availability - Invalid date: %q", date)
			handlers.RespondBadRequest(w, msgInvalidDate)
		default:
			h.logger.Error("GET /bookings/availability - Failed to check availability: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
