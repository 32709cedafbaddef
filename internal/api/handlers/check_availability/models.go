package check_availability

import (
	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	checkAvailability "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/check_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		Count:     resp.Count,
		Capacity:  resp.Capacity,
		Available: resp.Available,
	}
}
