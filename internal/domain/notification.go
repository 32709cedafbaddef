package domain

import (
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// NotificationView is the denormalized booking data needed to compose a customer message.
type NotificationView struct {
	BookingID     int64
	CustomerName  string
	CustomerPhone string
	ServiceName   string
	VehicleBrand  string
	VehicleModel  string
	LicensePlate  string
	Date          time.Time
	Time          types.TimeString
	Complaint     *string
	PaymentMethod string
	Status        Status
}
