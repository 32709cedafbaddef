package create_booking

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	VehicleID     int64           `json:"vehicleId"`
	ServiceID     int64           `json:"serviceId"`
	Date          string          `json:"date"` // "2026-10-15"
	Time          string          `json:"time"` // "10:00"
	Complaint     *string         `json:"complaint,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentProof  *string         `json:"paymentProof,omitempty"`
	Products      json.RawMessage `json:"products,omitempty"` // массив или строка с JSON массивом
}

// LineItemResponse товар в ответе
type LineItemResponse struct {
	ProductID int64 `json:"productId"`
	Price     int64 `json:"price"`
	Quantity  int   `json:"quantity"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customerId"`
	VehicleID     int64              `json:"vehicleId"`
	ServiceID     int64              `json:"serviceId"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	ServicePrice  int64              `json:"servicePrice"`
	Products      []LineItemResponse `json:"products"`
	CreatedAt     string             `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) *createBooking.Request {
	return &createBooking.Request{
		CustomerID:    customerID,
		VehicleID:     r.VehicleID,
		ServiceID:     r.ServiceID,
		Date:          r.Date,
		Time:          r.Time,
		Complaint:     r.Complaint,
		PaymentMethod: r.PaymentMethod,
		PaymentProof:  r.PaymentProof,
		Products:      r.Products,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	products := make([]LineItemResponse, len(resp.Items))
	for i, item := range resp.Items {
		products[i] = LineItemResponse{ProductID: item.ProductID, Price: item.Price, Quantity: item.Quantity}
	}

	return &BookingResponse{
		ID:            resp.ID,
		CustomerID:    resp.CustomerID,
		VehicleID:     resp.VehicleID,
		ServiceID:     resp.ServiceID,
		Date:          resp.Date.Format(domain.DateFormat),
		Time:          resp.Time.String(),
		Status:        string(resp.Status),
		PaymentMethod: resp.PaymentMethod,
		ServicePrice:  resp.ServicePrice,
		Products:      products,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
	}
}
