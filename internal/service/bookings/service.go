package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/txmanager"
)

const (
	actorCustomer = "customer"
	actorOperator = "operator"
)

// Settings правила, которые сервис применяет при переносе и смене статуса
type Settings struct {
	Rules         domain.ScheduleRules
	DailyCapacity int
	Policy        domain.StatusPolicy
}

// DefaultSettings правила по умолчанию
func DefaultSettings() Settings {
	return Settings{
		Rules:         domain.DefaultScheduleRules(),
		DailyCapacity: domain.DefaultDailyCapacity,
		Policy:        domain.NewStatusPolicy(false),
	}
}

// Service сервис для работы с существующими бронированиями
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	proofStore   ProofStore
	notifier     Notifier
	metrics      MetricsRecorder
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	proofStore ProofStore,
	notifier Notifier,
	metrics MetricsRecorder,
	settings Settings,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		proofStore:   proofStore,
		notifier:     notifier,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование клиента по ID
// Клиент видит только свои бронирования
func (s *Service) GetByID(ctx context.Context, id int64, customerID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for customer=%d", id, customerID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !booking.IsOwnedBy(customerID) {
		s.logger.Warn("GetByID: access denied for customer=%d to booking id=%d", customerID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings история бронирований клиента, новые первыми
func (s *Service) GetCustomerBookings(ctx context.Context, customerID int64) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d", customerID)

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(bookings), customerID)
	return models.FromDomainBookingList(bookings), nil
}

// List список бронирований для оператора с фильтрацией по дате и статусу
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.BookingListResponse, error) {
	filter := domain.BookingsFilter{Limit: req.Limit, Offset: req.Offset}

	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		date, err := s.parseDate(*req.Date)
		if err != nil {
			s.logger.Warn("List: invalid date %q", *req.Date)
			return nil, err
		}
		filter.Date = &date
	}

	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			s.logger.Warn("List: invalid status %q", *req.Status)
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, *req.Status)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отмена бронирования клиентом
// Разрешена только владельцу и только из статуса scheduled
func (s *Service) Cancel(ctx context.Context, bookingID int64, customerID int64) error {
	s.logger.Info("Cancel: cancelling booking id=%d by customer=%d", bookingID, customerID)

	// 1. Бронирование и владелец
	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return err
	}

	if !booking.IsOwnedBy(customerID) {
		s.logger.Warn("Cancel: access denied for customer=%d to booking id=%d", customerID, bookingID)
		return ErrAccessDenied
	}

	// 2. Допустимость перехода
	if !s.settings.Policy.CanCustomerCancel(booking.Status) {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, domain.StatusCancelled)
	}

	// 3. Запись при неизменном статусе
	err = s.bookingRepo.CompareAndSetStatus(ctx, bookingID, booking.Status, domain.StatusCancelled)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("Cancel: booking id=%d disappeared during cancellation", bookingID)
			return ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrStatusConflict):
			// Статус сменили параллельно, отмена из нового статуса клиенту недоступна
			s.logger.Warn("Cancel: booking id=%d status changed concurrently", bookingID)
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		default:
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	s.recordTransition(booking.Status, domain.StatusCancelled, actorCustomer)

	// 4. Удаление подтверждения оплаты, ошибки не влияют на результат
	s.removeProof(ctx, booking)

	if s.notifier != nil {
		s.notifier.BookingCancelled(bookingID)
	}

	return nil
}

// UpdateStatus смена статуса оператором
//
// Статус записывается и уведомление отправляется даже при совпадении
// с текущим: оператор может повторно отправить клиенту сообщение.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%q", bookingID, req.Status)

	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: unknown status %q for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.Status)
	}

	booking, err := s.getBooking(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return nil, err
	}

	if !s.settings.Policy.CanOperatorSet(booking.Status, next) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for booking id=%d",
			booking.Status, next, bookingID)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
	}

	err = s.bookingRepo.CompareAndSetStatus(ctx, bookingID, booking.Status, next)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("UpdateStatus: booking id=%d disappeared during update", bookingID)
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrStatusConflict):
			s.logger.Warn("UpdateStatus: booking id=%d was modified concurrently", bookingID)
			return nil, ErrConcurrentUpdate
		default:
			s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("UpdateStatus: booking id=%d moved %s -> %s", bookingID, booking.Status, next)
	s.recordTransition(booking.Status, next, actorOperator)

	if s.notifier != nil {
		s.notifier.StatusChanged(bookingID, next)
	}

	booking.Status = next
	return models.FromDomainBooking(booking), nil
}

// Reschedule перенос бронирования оператором на другую дату и время
//
// Новая дата проходит те же календарные проверки, что и при создании.
// Активное бронирование занимает место на новой дате, поэтому лимит
// проверяется под блокировкой дня в сериализуемой транзакции.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req *models.RescheduleRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reschedule: moving booking id=%d to date=%s, time=%s", bookingID, req.Date, req.Time)

	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		return nil, fmt.Errorf("%w: date and time are required", ErrMissingField)
	}

	date, err := s.parseDate(req.Date)
	if err != nil {
		s.logger.Warn("Reschedule: invalid date %q", req.Date)
		return nil, err
	}

	bookingTime, err := domain.ValidateSchedule(date, req.Time, s.timeProvider.Now(), s.settings.Rules)
	if err != nil {
		s.logger.Warn("Reschedule: schedule validation failed for booking id=%d: %v", bookingID, err)
		return nil, err
	}

	var result *domain.Booking

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		if booking.IsActive() {
			if err := s.bookingRepo.LockDay(txCtx, date); err != nil {
				return fmt.Errorf("%w: failed to lock day: %w", ErrInternal, err)
			}

			count, err := s.bookingRepo.CountActiveByDate(txCtx, date)
			if err != nil {
				return fmt.Errorf("%w: failed to count bookings: %w", ErrInternal, err)
			}
			// Бронирование уже учтено в счетчике своей даты
			if booking.Date.Format(domain.DateFormat) == date.Format(domain.DateFormat) {
				count--
			}
			if !domain.HasCapacity(count, s.settings.DailyCapacity) {
				return ErrSlotFull
			}
		}

		if err := s.bookingRepo.Reschedule(txCtx, bookingID, date, bookingTime); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to reschedule: %w", ErrInternal, err)
		}

		booking.Date = date
		booking.Time = bookingTime
		result = booking
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			s.logger.Warn("Reschedule: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		case errors.Is(err, ErrSlotFull):
			s.logger.Warn("Reschedule: no capacity on %s for booking id=%d", req.Date, bookingID)
			return nil, ErrSlotFull
		case errors.Is(err, txmanager.ErrRetriesExhausted):
			s.logger.Warn("Reschedule: date %s is contended for booking id=%d: %v", req.Date, bookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrDayContended, err)
		case errors.Is(err, ErrInternal):
			s.logger.Error("Reschedule: transaction failed for booking id=%d: %v", bookingID, err)
			return nil, err
		default:
			s.logger.Error("Reschedule: transaction failed for booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: Reschedule - transaction failed: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Reschedule: booking id=%d moved to %s %s", bookingID, req.Date, bookingTime)
	return models.FromDomainBooking(result), nil
}

// HasActiveByVehicle есть ли у мотоцикла незавершенные бронирования
func (s *Service) HasActiveByVehicle(ctx context.Context, vehicleID int64) (*models.ActiveBookingsResponse, error) {
	hasActive, err := s.bookingRepo.HasActiveByVehicle(ctx, vehicleID)
	if err != nil {
		s.logger.Error("HasActiveByVehicle: repository error for vehicle=%d: %v", vehicleID, err)
		return nil, fmt.Errorf("%w: HasActiveByVehicle - repository error: %v", ErrInternal, err)
	}
	return &models.ActiveBookingsResponse{HasActive: hasActive}, nil
}

// HasActiveByCustomer есть ли у клиента незавершенные бронирования
func (s *Service) HasActiveByCustomer(ctx context.Context, customerID int64) (*models.ActiveBookingsResponse, error) {
	hasActive, err := s.bookingRepo.HasActiveByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("HasActiveByCustomer: repository error for customer=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: HasActiveByCustomer - repository error: %v", ErrInternal, err)
	}
	return &models.ActiveBookingsResponse{HasActive: hasActive}, nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	loc := s.settings.Rules.Location
	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return date, nil
}

func (s *Service) removeProof(ctx context.Context, booking *domain.Booking) {
	if s.proofStore == nil || booking.PaymentProof == nil || strings.TrimSpace(*booking.PaymentProof) == "" {
		return
	}
	if err := s.proofStore.Remove(ctx, *booking.PaymentProof); err != nil {
		s.logger.Warn("Cancel: failed to remove payment proof %q of booking id=%d: %v",
			*booking.PaymentProof, booking.ID, err)
	}
}

func (s *Service) recordTransition(from, to domain.Status, actor string) {
	if s.metrics != nil {
		s.metrics.StatusTransition(string(from), string(to), actor)
	}
}
