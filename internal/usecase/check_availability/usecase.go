package check_availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// UseCase use case проверки свободных мест на дату
type UseCase struct {
	bookingRepo BookingRepository
	capacity    int
	location    *time.Location
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, capacity int, location *time.Location, logger Logger) *UseCase {
	if location == nil {
		location = time.Local
	}
	return &UseCase{
		bookingRepo: bookingRepo,
		capacity:    capacity,
		location:    location,
		logger:      logger,
	}
}

// Execute возвращает количество активных бронирований на дату и признак наличия мест
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	date, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(req.Date), uc.location)
	if err != nil {
		uc.logger.Warn("CheckAvailability: invalid date %q", req.Date)
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	count, err := uc.bookingRepo.CountActiveByDate(ctx, date)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to count bookings on %s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
	}

	availability := domain.NewAvailability(count, uc.capacity)
	uc.logger.Info("CheckAvailability: date=%s, %d/%d taken", req.Date, count, uc.capacity)

	return &Response{
		Date:      date,
		Count:     availability.Count,
		Capacity:  availability.Capacity,
		Available: availability.Available,
	}, nil
}
