package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/logger"
)

type mockService struct {
	cancelFunc func(ctx context.Context, bookingID int64, customerID int64) error
}

func (m *mockService) Cancel(ctx context.Context, bookingID int64, customerID int64) error {
	return m.cancelFunc(ctx, bookingID, customerID)
}

func newRequest(bookingID string, customerID int64) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/"+bookingID+"/cancel", nil)
	r = mux.SetURLVars(r, map[string]string{"bookingId": bookingID})
	return r.WithContext(middleware.WithUserID(r.Context(), customerID))
}

func TestHandle(t *testing.T) {
	svc := &mockService{cancelFunc: func(ctx context.Context, bookingID int64, customerID int64) error {
		switch bookingID {
		case 1:
			return nil
		case 2:
			return bookings.ErrBookingNotFound
		case 3:
			return bookings.ErrAccessDenied
		default:
			return bookings.ErrInvalidTransition
		}
	}}
	h := NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest("1", 42))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CancelBookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CancelBookingResponse{ID: 1, Status: "cancelled"}, resp)

	tests := []struct {
		bookingID string
		wantCode  int
	}{
		{"2", http.StatusNotFound},
		{"3", http.StatusForbidden},
		{"4", http.StatusConflict},
		{"0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.bookingID, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(tt.bookingID, 42))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
