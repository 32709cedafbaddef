package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      MetricsRecorder
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsRecorder,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Проверка лимита на день повторяется внутри сериализуемой транзакции
// под блокировкой строки дня, поэтому параллельные запросы на последнее
// место не превышают лимит.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, vehicle=%d, service=%d, date=%s, time=%s, payment=%s",
		req.CustomerID, req.VehicleID, req.ServiceID, req.Date, req.Time, req.PaymentMethod)

	// 1. Обязательные поля
	date, err := validateRequest(req, uc.settings.Rules.Location)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, uc.reject(err)
	}

	// 2. Подтверждение оплаты
	if err := validatePayment(req, uc.settings.CashPaymentMethod); err != nil {
		uc.logger.Warn("CreateBooking: payment validation failed: %v", err)
		return nil, uc.reject(err)
	}

	// 3. Календарные правила
	now := uc.timeProvider.Now()
	bookingTime, err := domain.ValidateSchedule(date, req.Time, now, uc.settings.Rules)
	if err != nil {
		uc.logger.Warn("CreateBooking: schedule validation failed: %v", err)
		return nil, uc.reject(err)
	}

	// 4. Товары
	items, err := ParseProducts(req.Products)
	if err != nil {
		uc.logger.Warn("CreateBooking: products validation failed: %v", err)
		return nil, uc.reject(err)
	}

	// 5. Быстрая проверка лимита без блокировки (окончательная - в транзакции)
	count, err := uc.bookingRepo.CountActiveByDate(ctx, date)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to count bookings on %s: %v", req.Date, err)
		return nil, uc.reject(fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err))
	}
	if !domain.HasCapacity(count, uc.settings.DailyCapacity) {
		uc.logger.Warn("CreateBooking: no capacity on %s, %d/%d taken", req.Date, count, uc.settings.DailyCapacity)
		return nil, uc.reject(ErrSlotFull)
	}

	// 6. Услуга и цена
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, uc.reject(ErrServiceNotFound)
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, uc.reject(fmt.Errorf("%w: failed to get service: %v", ErrInternal, err))
	}

	catalog, err := uc.catalogRepo.GetProducts(ctx, service.ID, productIDs(items))
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get products of service id=%d: %v", service.ID, err)
		return nil, uc.reject(fmt.Errorf("%w: failed to get products: %v", ErrInternal, err))
	}

	servicePrice, items, err := ResolvePricing(*service, items, catalog, uc.settings.TrustClientPrices)
	if err != nil {
		uc.logger.Warn("CreateBooking: pricing failed: %v", err)
		return nil, uc.reject(err)
	}

	booking := &domain.Booking{
		CustomerID:    req.CustomerID,
		VehicleID:     req.VehicleID,
		ServiceID:     service.ID,
		Date:          date,
		Time:          bookingTime,
		Status:        domain.StatusScheduled,
		Complaint:     req.Complaint,
		PaymentMethod: req.PaymentMethod,
		PaymentProof:  req.PaymentProof,
		ServicePrice:  servicePrice,
	}

	// 7. Лимит и запись в одной сериализуемой транзакции
	var result *domain.Booking

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockDay(txCtx, date); err != nil {
			return fmt.Errorf("%w: failed to lock day: %w", ErrInternal, err)
		}

		count, err := uc.bookingRepo.CountActiveByDate(txCtx, date)
		if err != nil {
			return fmt.Errorf("%w: failed to count bookings: %w", ErrInternal, err)
		}
		if !domain.HasCapacity(count, uc.settings.DailyCapacity) {
			uc.logger.Warn("CreateBooking: no capacity on %s under lock, %d/%d taken",
				req.Date, count, uc.settings.DailyCapacity)
			return ErrSlotFull
		}

		// Create заполняет ID и даты в переданной структуре, поэтому
		// при повторе транзакции пишем копию
		candidate := *booking
		created, err := uc.bookingRepo.Create(txCtx, &candidate)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrForeignKeyViolation) {
				return fmt.Errorf("%w: %v", ErrInvalidReference, err)
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		if err := uc.bookingRepo.CreateLineItems(txCtx, created.ID, items); err != nil {
			if errors.Is(err, bookingRepo.ErrForeignKeyViolation) {
				return fmt.Errorf("%w: %v", ErrInvalidReference, err)
			}
			return fmt.Errorf("%w: failed to create line items: %w", ErrInternal, err)
		}

		created.Items = items
		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotFull), errors.Is(err, ErrInvalidReference):
			uc.logger.Warn("CreateBooking: rejected: %v", err)
			return nil, uc.reject(err)
		case errors.Is(err, txmanager.ErrRetriesExhausted):
			uc.logger.Warn("CreateBooking: date %s is contended: %v", req.Date, err)
			return nil, uc.reject(fmt.Errorf("%w: %v", ErrDayContended, err))
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, uc.reject(err)
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, uc.reject(fmt.Errorf("%w: transaction failed: %v", ErrInternal, err))
		}
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, service_price=%d, items=%d",
		result.ID, result.ServicePrice, len(result.Items))

	if uc.metrics != nil {
		uc.metrics.BookingCreated(result.PaymentMethod)
	}

	// 8. Уведомление после коммита, ошибки не влияют на результат
	if uc.notifier != nil {
		uc.notifier.BookingCreated(result.ID)
	}

	return &Response{
		ID:            result.ID,
		CustomerID:    result.CustomerID,
		VehicleID:     result.VehicleID,
		ServiceID:     result.ServiceID,
		Date:          result.Date,
		Time:          result.Time,
		Status:        result.Status,
		PaymentMethod: result.PaymentMethod,
		ServicePrice:  result.ServicePrice,
		Items:         result.Items,
		CreatedAt:     result.CreatedAt,
	}, nil
}

func (uc *UseCase) reject(err error) error {
	if uc.metrics != nil {
		uc.metrics.BookingRejected(rejectReason(err))
	}
	return err
}
