package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос оператора на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RescheduleRequest запрос оператора на перенос бронирования
type RescheduleRequest struct {
	Date string `json:"date"` // "2026-10-15"
	Time string `json:"time"` // "10:00"
}

// ListRequest фильтр списка бронирований оператора
type ListRequest struct {
	Date   *string // Дата "YYYY-MM-DD" (опционально)
	Status *string // Статус (опционально)
	Limit  uint64
	Offset uint64
}

// Response модели

// LineItemResponse товар в бронировании
type LineItemResponse struct {
	ProductID int64 `json:"productId"`
	Price     int64 `json:"price"`
	Quantity  int   `json:"quantity"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customerId"`
	VehicleID     int64              `json:"vehicleId"`
	ServiceID     int64              `json:"serviceId"`
	Date          string             `json:"date"` // "2026-10-15"
	Time          string             `json:"time"` // "10:00"
	Status        string             `json:"status"`
	Complaint     *string            `json:"complaint,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentProof  *string            `json:"paymentProof,omitempty"`
	ServicePrice  int64              `json:"servicePrice"`
	Products      []LineItemResponse `json:"products"`
	Total         int64              `json:"total"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ActiveBookingsResponse наличие незавершенных бронирований
type ActiveBookingsResponse struct {
	HasActive bool `json:"hasActive"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	products := make([]LineItemResponse, len(b.Items))
	for i, item := range b.Items {
		products[i] = LineItemResponse{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return &BookingResponse{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		VehicleID:     b.VehicleID,
		ServiceID:     b.ServiceID,
		Date:          b.Date.Format(domain.DateFormat),
		Time:          b.Time.String(),
		Status:        string(b.Status),
		Complaint:     b.Complaint,
		PaymentMethod: b.PaymentMethod,
		PaymentProof:  b.PaymentProof,
		ServicePrice:  b.ServicePrice,
		Products:      products,
		Total:         b.Total(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
