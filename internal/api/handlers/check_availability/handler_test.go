package check_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkAvailability "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/check_availability"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/logger"
)

type mockUseCase struct {
	executeFunc func(ctx context.Context, req *checkAvailability.Request) (*checkAvailability.Response, error)
}

func (m *mockUseCase) Execute(ctx context.Context, req *checkAvailability.Request) (*checkAvailability.Response, error) {
	return m.executeFunc(ctx, req)
}

func TestHandle(t *testing.T) {
	uc := &mockUseCase{executeFunc: func(ctx context.Context, req *checkAvailability.Request) (*checkAvailability.Response, error) {
		if req.Date != "2026-10-15" {
			return nil, checkAvailability.ErrInvalidDate
		}
		return &checkAvailability.Response{
			Date:      time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			Count:     10,
			Capacity:  10,
			Available: false,
		}, nil
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/availability?date=2026-10-15", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AvailabilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, AvailabilityResponse{Date: "2026-10-15", Count: 10, Capacity: 10, Available: false}, resp)

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/availability?date=tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
