package create_booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// validateRequest проверяет обязательные поля и разбирает дату
func validateRequest(req *Request, loc *time.Location) (time.Time, error) {
	if req.CustomerID <= 0 {
		return time.Time{}, fmt.Errorf("%w: customer", ErrMissingField)
	}
	if req.VehicleID <= 0 {
		return time.Time{}, fmt.Errorf("%w: vehicle_id", ErrMissingField)
	}
	if req.ServiceID <= 0 {
		return time.Time{}, fmt.Errorf("%w: service_id", ErrMissingField)
	}
	if strings.TrimSpace(req.Date) == "" {
		return time.Time{}, fmt.Errorf("%w: booking_date", ErrMissingField)
	}
	if strings.TrimSpace(req.Time) == "" {
		return time.Time{}, fmt.Errorf("%w: booking_time", ErrMissingField)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return time.Time{}, fmt.Errorf("%w: payment_method", ErrMissingField)
	}

	date, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(req.Date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	if req.Complaint != nil && utf8.RuneCountInString(*req.Complaint) > domain.MaxComplaintLength {
		return time.Time{}, fmt.Errorf("%w: max %d characters", ErrInvalidComplaint, domain.MaxComplaintLength)
	}

	return date, nil
}

// validatePayment требует подтверждение оплаты для любого способа, кроме наличных
func validatePayment(req *Request, cashMethod string) error {
	if strings.EqualFold(strings.TrimSpace(req.PaymentMethod), cashMethod) {
		return nil
	}
	if req.PaymentProof == nil || strings.TrimSpace(*req.PaymentProof) == "" {
		return ErrPaymentProofRequired
	}
	return nil
}

// rejectReason метка отказа для метрик
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidComplaint):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return "invalid_time"
	case errors.Is(err, domain.ErrInPast):
		return "in_past"
	case errors.Is(err, domain.ErrTooFarAhead):
		return "too_far_ahead"
	case errors.Is(err, domain.ErrClosedDay):
		return "closed_day"
	case errors.Is(err, domain.ErrOutsideOperatingHours):
		return "outside_hours"
	case errors.Is(err, ErrPaymentProofRequired):
		return "payment_proof"
	case errors.Is(err, ErrSlotFull):
		return "slot_full"
	case errors.Is(err, ErrDayContended):
		return "contended"
	case errors.Is(err, ErrInvalidProductPayload), errors.Is(err, ErrProductMissingFields), errors.Is(err, ErrProductNotInService):
		return "invalid_products"
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	default:
		return "internal"
	}
}
