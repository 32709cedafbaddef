package active_bookings

import (
	"context"

	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
)

type BookingService interface {
	HasActiveByVehicle(ctx context.Context, vehicleID int64) (*models.ActiveBookingsResponse, error)
	HasActiveByCustomer(ctx context.Context, customerID int64) (*models.ActiveBookingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
