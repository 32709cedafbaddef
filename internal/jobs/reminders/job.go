package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

const runTimeout = time.Minute

// Job напоминает клиентам о завтрашних записях
type Job struct {
	repo         BookingRepository
	notifier     Notifier
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewJob создает задачу напоминаний
func NewJob(repo BookingRepository, notifier Notifier, location *time.Location, logger Logger) *Job {
	if location == nil {
		location = time.Local
	}
	return &Job{
		repo:         repo,
		notifier:     notifier,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Run отправляет напоминания по всем записям на завтра в статусе scheduled
// Возвращает количество запущенных отправок
func (j *Job) Run(ctx context.Context) (int, error) {
	now := j.timeProvider.Now().In(j.location)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, j.location)

	ids, err := j.repo.ListIDsByDateAndStatus(ctx, tomorrow, domain.StatusScheduled)
	if err != nil {
		j.logger.Error("Reminders: failed to list bookings on %s: %v", tomorrow.Format(domain.DateFormat), err)
		return 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	for _, id := range ids {
		j.notifier.BookingReminder(id)
	}

	j.logger.Info("Reminders: %d reminders queued for %s", len(ids), tomorrow.Format(domain.DateFormat))
	return len(ids), nil
}

// Schedule регистрирует задачу в cron по cron-выражению expr
func (j *Job) Schedule(c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_, _ = j.Run(ctx)
	})
}

// NewScheduler cron в часовом поясе мастерской
func NewScheduler(location *time.Location) *cron.Cron {
	if location == nil {
		location = time.Local
	}
	return cron.New(cron.WithLocation(location))
}
