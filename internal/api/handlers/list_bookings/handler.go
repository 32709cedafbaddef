package list_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
)

const (
	msgInvalidDate       = "некорректная дата, ожидается формат YYYY-MM-DD"
	msgUnknownStatus     = "неизвестный статус бронирования"
	msgInvalidPagination = "некорректные параметры limit/offset"

	defaultLimit = 100
	maxLimit     = 500
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

// Handle GET /api/v1/admin/bookings?date=YYYY-MM-DD&status=scheduled&limit=&offset=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &models.ListRequest{Limit: defaultLimit}
	if date := query.Get("date"); date != "" {
		req.Date = &date
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	var err error
	if v := query.Get("limit"); v != "" {
		req.Limit, err = strconv.ParseUint(v, 10, 64)
		if err != nil || req.Limit == 0 {
			h.logger.Warn("GET /admin/bookings - Invalid limit: %s", v)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
		if req.Limit > maxLimit {
			req.Limit = maxLimit
		}
	}
	if v := query.Get("offset"); v != "" {
		req.Offset, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			h.logger.Warn("GET /admin/bookings - Invalid offset: %s", v)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidDate):
			h.logger.Warn("GET /admin/bookings - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, bookings.ErrUnknownStatus):
			h.logger.Warn("GET /admin/bookings - Unknown status: %v", err)
			handlers.RespondBadRequest(w, msgUnknownStatus)

		default:
			h.logger.Error("GET /admin/bookings - Failed to list bookings: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
