package get_customer_bookings

import (
	"context"

	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
)

type BookingService interface {
	GetCustomerBookings(ctx context.Context, customerID int64) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
