package get_customer_bookings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/logger"
)

type mockService struct {
	listFunc func(ctx context.Context, customerID int64) (*models.BookingListResponse, error)
}

func (m *mockService) GetCustomerBookings(ctx context.Context, customerID int64) (*models.BookingListResponse, error) {
	return m.listFunc(ctx, customerID)
}

func TestHandle(t *testing.T) {
	svc := &mockService{listFunc: func(ctx context.Context, customerID int64) (*models.BookingListResponse, error) {
		if customerID == 13 {
			return nil, errors.New("db is down")
		}
		return &models.BookingListResponse{Bookings: []models.BookingResponse{}}, nil
	}}
	h := NewHandler(svc, logger.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, r.WithContext(middleware.WithUserID(r.Context(), 42)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = httptest.NewRecorder()
	h.Handle(rec, r.WithContext(middleware.WithUserID(r.Context(), 13)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
