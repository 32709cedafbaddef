package domain

import (
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// Booking is one reserved workshop visit for a given calendar day.
// Customer, vehicle and service are referenced, not owned.
type Booking struct {
	ID         int64
	CustomerID int64
	VehicleID  int64
	ServiceID  int64

	Date time.Time
	Time types.TimeString

	Status        Status
	Complaint     *string
	PaymentMethod string
	PaymentProof  *string

	// ServicePrice is the amount snapshotted at creation time and never recomputed.
	ServicePrice int64
	Items        []LineItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineItem is a product attached to a booking with its price fixed at booking time.
type LineItem struct {
	ID        int64
	BookingID int64
	ProductID int64
	Price     int64
	Quantity  int
	Position  int
}

// Total returns price * quantity.
func (li LineItem) Total() int64 {
	return li.Price * int64(li.Quantity)
}

// IsActive reports whether the booking still occupies capacity on its date.
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsOwnedBy reports whether the booking belongs to the given customer.
func (b *Booking) IsOwnedBy(customerID int64) bool {
	return b.CustomerID == customerID
}

// Total returns the service price plus all line items.
func (b *Booking) Total() int64 {
	total := b.ServicePrice
	for _, item := range b.Items {
		total += item.Total()
	}
	return total
}

// BookingsFilter фильтр списка бронирований для оператора
type BookingsFilter struct {
	Date       *time.Time // Конкретная дата (опционально)
	Status     *Status    // Статус (опционально)
	CustomerID *int64     // Клиент (опционально)
	Limit      uint64     // 0 = без ограничения
	Offset     uint64
}
