package notifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

const defaultSendTimeout = 15 * time.Second

// Settings адресация и таймаут отправки
type Settings struct {
	CountryCode   string
	TrunkPrefix   string
	AddressSuffix string
	SendTimeout   time.Duration
}

// Service асинхронная отправка уведомлений о бронированиях
//
// Каждое уведомление отправляется в отдельной горутине со своим таймаутом.
// Ошибки логируются и учитываются в метриках, вызывающему не возвращаются.
type Service struct {
	repo     ViewRepository
	sender   Sender
	metrics  MetricsRecorder
	settings Settings
	logger   Logger

	wg sync.WaitGroup
}

// NewService создает сервис уведомлений
func NewService(repo ViewRepository, sender Sender, metrics MetricsRecorder, settings Settings, logger Logger) *Service {
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = defaultSendTimeout
	}
	return &Service{
		repo:     repo,
		sender:   sender,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
	}
}

// BookingCreated уведомление о новом бронировании
func (s *Service) BookingCreated(bookingID int64) {
	s.dispatch(KindCreated, bookingID, CreatedMessage)
}

// BookingCancelled уведомление об отмене
func (s *Service) BookingCancelled(bookingID int64) {
	s.dispatch(KindCancelled, bookingID, CancelledMessage)
}

// StatusChanged уведомление о смене статуса
func (s *Service) StatusChanged(bookingID int64, status domain.Status) {
	s.dispatch(KindStatusChanged, bookingID, func(v *domain.NotificationView) string {
		return StatusChangedMessage(v, status)
	})
}

// BookingReminder напоминание о визите
func (s *Service) BookingReminder(bookingID int64) {
	s.dispatch(KindReminder, bookingID, ReminderMessage)
}

// Wait дожидается завершения отправок, запущенных до вызова
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) dispatch(kind Kind, bookingID int64, format func(v *domain.NotificationView) string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.settings.SendTimeout)
		defer cancel()

		if err := s.send(ctx, bookingID, format); err != nil {
			s.logger.Warn("Notify: failed to send %s notification for booking id=%d: %v", kind, bookingID, err)
			if s.metrics != nil {
				s.metrics.NotificationFailed(string(kind))
			}
			return
		}

		s.logger.Info("Notify: %s notification sent for booking id=%d", kind, bookingID)
		if s.metrics != nil {
			s.metrics.NotificationSent(string(kind))
		}
	}()
}

func (s *Service) send(ctx context.Context, bookingID int64, format func(v *domain.NotificationView) string) error {
	view, err := s.repo.GetNotificationView(ctx, bookingID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(view.CustomerPhone) == "" {
		return ErrNoPhone
	}

	address := NormalizePhone(view.CustomerPhone, s.settings)
	return s.sender.Send(ctx, address, format(view))
}
