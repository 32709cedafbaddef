package bookings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/logger"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/ptr"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/txmanager"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// Моки

type mockBookingRepo struct {
	getByIDFunc             func(ctx context.Context, id int64) (*domain.Booking, error)
	getByCustomerIDFunc     func(ctx context.Context, customerID int64) ([]*domain.Booking, error)
	listFunc                func(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	compareAndSetStatusFunc func(ctx context.Context, id int64, expected, next domain.Status) error
	lockDayFunc             func(ctx context.Context, date time.Time) error
	countActiveByDateFunc   func(ctx context.Context, date time.Time) (int, error)
	rescheduleFunc          func(ctx context.Context, id int64, date time.Time, t types.TimeString) error
	hasActiveByVehicleFunc  func(ctx context.Context, vehicleID int64) (bool, error)
	hasActiveByCustomerFunc func(ctx context.Context, customerID int64) (bool, error)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBookingRepo) GetByCustomerID(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	return m.getByCustomerIDFunc(ctx, customerID)
}

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockBookingRepo) CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.Status) error {
	return m.compareAndSetStatusFunc(ctx, id, expected, next)
}

func (m *mockBookingRepo) LockDay(ctx context.Context, date time.Time) error {
	if m.lockDayFunc == nil {
		return nil
	}
	return m.lockDayFunc(ctx, date)
}

func (m *mockBookingRepo) CountActiveByDate(ctx context.Context, date time.Time) (int, error) {
	return m.countActiveByDateFunc(ctx, date)
}

func (m *mockBookingRepo) Reschedule(ctx context.Context, id int64, date time.Time, t types.TimeString) error {
	return m.rescheduleFunc(ctx, id, date, t)
}

func (m *mockBookingRepo) HasActiveByVehicle(ctx context.Context, vehicleID int64) (bool, error) {
	return m.hasActiveByVehicleFunc(ctx, vehicleID)
}

func (m *mockBookingRepo) HasActiveByCustomer(ctx context.Context, customerID int64) (bool, error) {
	return m.hasActiveByCustomerFunc(ctx, customerID)
}

type passthroughTx struct {
	calls int
}

// DoSerializable ведет себя как txmanager без повторов
func (p *passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	err := fn(ctx)
	if err != nil && txmanager.IsRetryable(err) {
		return fmt.Errorf("%w: %w", txmanager.ErrRetriesExhausted, err)
	}
	return err
}

type mockProofStore struct {
	removed []string
	err     error
}

func (m *mockProofStore) Remove(ctx context.Context, ref string) error {
	m.removed = append(m.removed, ref)
	return m.err
}

type statusChange struct {
	id     int64
	status domain.Status
}

type mockNotifier struct {
	cancelled []int64
	changed   []statusChange
}

func (m *mockNotifier) BookingCancelled(bookingID int64) {
	m.cancelled = append(m.cancelled, bookingID)
}

func (m *mockNotifier) StatusChanged(bookingID int64, status domain.Status) {
	m.changed = append(m.changed, statusChange{id: bookingID, status: status})
}

type mockMetrics struct {
	transitions []string
}

func (m *mockMetrics) StatusTransition(from, to, actor string) {
	m.transitions = append(m.transitions, actor+":"+from+"->"+to)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

// Окружение

// Wednesday, 09:00 UTC
var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type env struct {
	repo     *mockBookingRepo
	tx       *passthroughTx
	proofs   *mockProofStore
	notifier *mockNotifier
	metrics  *mockMetrics
	svc      *Service
}

func newEnv(strict bool) *env {
	settings := DefaultSettings()
	settings.Rules.Location = time.UTC
	settings.Policy = domain.NewStatusPolicy(strict)

	e := &env{
		repo:     &mockBookingRepo{},
		tx:       &passthroughTx{},
		proofs:   &mockProofStore{},
		notifier: &mockNotifier{},
		metrics:  &mockMetrics{},
	}
	e.svc = NewService(e.repo, e.tx, e.proofs, e.notifier, e.metrics, settings, logger.NewNop())
	e.svc.timeProvider = fixedTime{now: testNow}
	return e
}

func testBooking(status domain.Status) *domain.Booking {
	return &domain.Booking{
		ID:            1,
		CustomerID:    10,
		VehicleID:     20,
		ServiceID:     2,
		Date:          time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		Time:          types.MustTimeString("10:00"),
		Status:        status,
		PaymentMethod: "transfer",
		PaymentProof:  ptr.Ptr("proofs/1.jpg"),
		ServicePrice:  80000,
	}
}

// memoryStatus хранит статус одного бронирования и применяет compare-and-set
func (e *env) memoryStatus(b *domain.Booking) {
	e.repo.getByIDFunc = func(ctx context.Context, id int64) (*domain.Booking, error) {
		if id != b.ID {
			return nil, bookingRepo.ErrBookingNotFound
		}
		snapshot := *b
		return &snapshot, nil
	}
	e.repo.compareAndSetStatusFunc = func(ctx context.Context, id int64, expected, next domain.Status) error {
		if id != b.ID {
			return bookingRepo.ErrBookingNotFound
		}
		if b.Status != expected {
			return bookingRepo.ErrStatusConflict
		}
		b.Status = next
		return nil
	}
}

// GetByID

func TestGetByID(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	booking.Items = []domain.LineItem{{ProductID: 7, Price: 50000, Quantity: 2}}
	e.memoryStatus(booking)

	t.Run("owner", func(t *testing.T) {
		resp, err := e.svc.GetByID(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-15", resp.Date)
		assert.Equal(t, "10:00", resp.Time)
		assert.Equal(t, int64(80000), resp.ServicePrice)
		assert.Equal(t, int64(180000), resp.Total)
		require.Len(t, resp.Products, 1)
		assert.Equal(t, int64(7), resp.Products[0].ProductID)
	})

	t.Run("another customer", func(t *testing.T) {
		_, err := e.svc.GetByID(context.Background(), 1, 11)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := e.svc.GetByID(context.Background(), 2, 10)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		e := newEnv(false)
		e.repo.getByIDFunc = func(ctx context.Context, id int64) (*domain.Booking, error) {
			return nil, errors.New("connection reset")
		}
		_, err := e.svc.GetByID(context.Background(), 1, 10)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

// Cancel

func TestCancel_CustomerCancelsScheduledBooking(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	e.memoryStatus(booking)

	err := e.svc.Cancel(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, booking.Status)
	assert.Equal(t, []string{"proofs/1.jpg"}, e.proofs.removed)
	assert.Equal(t, []int64{1}, e.notifier.cancelled)
	assert.Equal(t, []string{"customer:scheduled->cancelled"}, e.metrics.transitions)

	// Повторная отмена уже отмененного бронирования
	err = e.svc.Cancel(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusCancelled, booking.Status)
	assert.Len(t, e.notifier.cancelled, 1)
}

func TestCancel_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.Status
		customerID int64
		bookingID  int64
		wantErr    error
	}{
		{"processing", domain.StatusProcessing, 10, 1, ErrInvalidTransition},
		{"completed", domain.StatusCompleted, 10, 1, ErrInvalidTransition},
		{"another customer", domain.StatusScheduled, 11, 1, ErrAccessDenied},
		{"missing booking", domain.StatusScheduled, 10, 5, ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(false)
			booking := testBooking(tt.status)
			e.memoryStatus(booking)

			err := e.svc.Cancel(context.Background(), tt.bookingID, tt.customerID)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.status, booking.Status)
			assert.Empty(t, e.proofs.removed)
			assert.Empty(t, e.notifier.cancelled)
		})
	}
}

func TestCancel_LostRaceWithOperator(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	e.memoryStatus(booking)
	e.repo.compareAndSetStatusFunc = func(ctx context.Context, id int64, expected, next domain.Status) error {
		return bookingRepo.ErrStatusConflict
	}

	err := e.svc.Cancel(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, e.notifier.cancelled)
}

func TestCancel_ProofCleanupFailureIsIgnored(t *testing.T) {
	e := newEnv(false)
	e.proofs.err = errors.New("permission denied")
	booking := testBooking(domain.StatusScheduled)
	e.memoryStatus(booking)

	err := e.svc.Cancel(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, booking.Status)
	assert.Equal(t, []int64{1}, e.notifier.cancelled)
}

func TestCancel_CashBookingHasNoProof(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	booking.PaymentMethod = "cash"
	booking.PaymentProof = nil
	e.memoryStatus(booking)

	require.NoError(t, e.svc.Cancel(context.Background(), 1, 10))
	assert.Empty(t, e.proofs.removed)
}

// UpdateStatus

func TestUpdateStatus_Permissive(t *testing.T) {
	tests := []struct {
		from domain.Status
		to   string
		want domain.Status
	}{
		{domain.StatusScheduled, "processing", domain.StatusProcessing},
		{domain.StatusProcessing, "completed", domain.StatusCompleted},
		{domain.StatusCompleted, "scheduled", domain.StatusScheduled},
		{domain.StatusCancelled, " Processing ", domain.StatusProcessing},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+tt.to, func(t *testing.T) {
			e := newEnv(false)
			booking := testBooking(tt.from)
			e.memoryStatus(booking)

			resp, err := e.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: tt.to})

			require.NoError(t, err)
			assert.Equal(t, string(tt.want), resp.Status)
			assert.Equal(t, tt.want, booking.Status)
			assert.Equal(t, []statusChange{{id: 1, status: tt.want}}, e.notifier.changed)
			assert.Equal(t, []string{"operator:" + string(tt.from) + "->" + string(tt.want)}, e.metrics.transitions)
		})
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	e.memoryStatus(booking)

	_, err := e.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: "archived"})

	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, domain.StatusScheduled, booking.Status)
	assert.Empty(t, e.notifier.changed)
}

func TestUpdateStatus_SameStatusStillWritesAndNotifies(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusProcessing)
	e.memoryStatus(booking)

	var writes []domain.Status
	e.repo.compareAndSetStatusFunc = func(ctx context.Context, id int64, expected, next domain.Status) error {
		assert.Equal(t, domain.StatusProcessing, expected)
		writes = append(writes, next)
		return nil
	}

	resp, err := e.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: "processing"})

	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, []domain.Status{domain.StatusProcessing}, writes)
	assert.Equal(t, []statusChange{{id: 1, status: domain.StatusProcessing}}, e.notifier.changed)
}

func TestUpdateStatus_StrictPolicy(t *testing.T) {
	e := newEnv(true)
	booking := testBooking(domain.StatusCompleted)
	e.memoryStatus(booking)

	_, err := e.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: "scheduled"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusCompleted, booking.Status)
}

func TestUpdateStatus_ConcurrentUpdate(t *testing.T) {
	e := newEnv(false)
	booking := testBooking(domain.StatusScheduled)
	e.memoryStatus(booking)
	e.repo.compareAndSetStatusFunc = func(ctx context.Context, id int64, expected, next domain.Status) error {
		return bookingRepo.ErrStatusConflict
	}

	_, err := e.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: "completed"})

	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Empty(t, e.notifier.changed)
	assert.Empty(t, e.metrics.transitions)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	e := newEnv(false)
	e.memoryStatus(testBooking(domain.StatusScheduled))

	_, err := e.svc.UpdateStatus(context.Background(), 9, &models.UpdateStatusRequest{Status: "completed"})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

// Reschedule

type rescheduleCall struct {
	date time.Time
	time types.TimeString
}

func (e *env) rescheduleStore(booking *domain.Booking, active int) *[]rescheduleCall {
	calls := &[]rescheduleCall{}
	e.memoryStatus(booking)
	e.repo.countActiveByDateFunc = func(ctx context.Context, date time.Time) (int, error) {
		return active, nil
	}
	e.repo.rescheduleFunc = func(ctx context.Context, id int64, date time.Time, t types.TimeString) error {
		*calls = append(*calls, rescheduleCall{date: date, time: t})
		return nil
	}
	return calls
}

func TestReschedule_ToAnotherDay(t *testing.T) {
	e := newEnv(false)
	var locked []time.Time
	e.repo.lockDayFunc = func(ctx context.Context, date time.Time) error {
		locked = append(locked, date)
		return nil
	}
	calls := e.rescheduleStore(testBooking(domain.StatusScheduled), 9)

	resp, err := e.svc.Reschedule(context.Background(), 1, &models.RescheduleRequest{Date: "2026-10-16", Time: "9:30"})

	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", resp.Date)
	assert.Equal(t, "09:30", resp.Time)
	require.Len(t, *calls, 1)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), (*calls)[0].date)
	assert.Equal(t, []time.Time{time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)}, locked)
	assert.Equal(t, 1, e.tx.calls)
}

func TestReschedule_TargetDayFull(t *testing.T) {
	e := newEnv(false)
	calls := e.rescheduleStore(testBooking(domain.StatusScheduled), domain.DefaultDailyCapacity)

	_, err := e.svc.Reschedule(context.Background(), 1, &models.RescheduleRequest{Date: "2026-10-16", Time: "10:00"})

	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Empty(t, *calls)
}

func TestReschedule_SameDayDoesNotCountItself(t *testing.T) {
	e := newEnv(false)
	calls := e.rescheduleStore(testBooking(domain.StatusScheduled), domain.DefaultDailyCapacity)

	resp, err := e.svc.Reschedule(context.Background(), 1, &models.RescheduleRequest{Date: "2026-10-15", Time: "14:00"})

	require.NoError(t, err)
	assert.Equal(t, "14:00", resp.Time)
	assert.Len(t, *calls, 1)
}

func TestReschedule_FinishedBookingSkipsCapacity(t *testing.T) {
	e := newEnv(false)
	calls := e.rescheduleStore(testBooking(domain.StatusCompleted), domain.DefaultDailyCapacity)
	e.repo.countActiveByDateFunc = func(ctx context.Context, date time.Time) (int, error) {
		t.Fatal("unexpected capacity check")
		return 0, nil
	}

	_, err := e.svc.Reschedule(context.Background(), 1, &models.RescheduleRequest{Date: "2026-10-16", Time: "10:00"})

	require.NoError(t, err)
	assert.Len(t, *calls, 1)
}

func TestReschedule_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     models.RescheduleRequest
		wantErr error
	}{
		{"missing time", models.RescheduleRequest{Date: "2026-10-16"}, ErrMissingField},
		{"bad date", models.RescheduleRequest{Date: "16/10/2026", Time: "10:00"}, ErrInvalidDate},
		{"bad time", models.RescheduleRequest{Date: "2026-10-16", Time: "ten"}, domain.ErrInvalidTimeFormat},
		{"sunday", models.RescheduleRequest{Date: "2026-10-18", Time: "10:00"}, domain.ErrClosedDay},
		{"past", models.RescheduleRequest{Date: "2026-10-14", Time: "08:00"}, domain.ErrInPast},
		{"after closing", models.RescheduleRequest{Date: "2026-10-16", Time: "17:00"}, domain.ErrOutsideOperatingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(false)
			calls := e.rescheduleStore(testBooking(domain.StatusScheduled), 0)

			_, err := e.svc.Reschedule(context.Background(), 1, &tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, *calls)
			assert.Zero(t, e.tx.calls)
		})
	}
}

func TestReschedule_SerializationRetriesExhausted(t *testing.T) {
	e := newEnv(false)
	calls := e.rescheduleStore(testBooking(domain.StatusScheduled), 3)
	e.repo.lockDayFunc = func(ctx context.Context, date time.Time) error {
		return &pq.Error{Code: "40001", Message: "could not serialize access"}
	}

	resp, err := e.svc.Reschedule(context.Background(), 1, &models.RescheduleRequest{Date: "2026-10-16", Time: "10:00"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrDayContended)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, *calls)
}

func TestReschedule_NotFound(t *testing.T) {
	e := newEnv(false)
	e.rescheduleStore(testBooking(domain.StatusScheduled), 0)

	_, err := e.svc.Reschedule(context.Background(), 42, &models.RescheduleRequest{Date: "2026-10-16", Time: "10:00"})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

// Списки и активные бронирования

func TestList_ParsesFilter(t *testing.T) {
	e := newEnv(false)
	var got domain.BookingsFilter
	e.repo.listFunc = func(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
		got = filter
		return []*domain.Booking{testBooking(domain.StatusScheduled)}, nil
	}

	resp, err := e.svc.List(context.Background(), &models.ListRequest{
		Date:   ptr.Ptr("2026-10-15"),
		Status: ptr.Ptr("scheduled"),
		Limit:  20,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
	require.NotNil(t, got.Date)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), *got.Date)
	require.NotNil(t, got.Status)
	assert.Equal(t, domain.StatusScheduled, *got.Status)
	assert.Equal(t, uint64(20), got.Limit)
}

func TestList_InvalidFilter(t *testing.T) {
	e := newEnv(false)

	_, err := e.svc.List(context.Background(), &models.ListRequest{Date: ptr.Ptr("yesterday")})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = e.svc.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestGetCustomerBookings_Empty(t *testing.T) {
	e := newEnv(false)
	e.repo.getByCustomerIDFunc = func(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
		return nil, nil
	}

	resp, err := e.svc.GetCustomerBookings(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, resp.Bookings)
	assert.Empty(t, resp.Bookings)
}

func TestHasActive(t *testing.T) {
	e := newEnv(false)
	e.repo.hasActiveByVehicleFunc = func(ctx context.Context, vehicleID int64) (bool, error) {
		return vehicleID == 20, nil
	}
	e.repo.hasActiveByCustomerFunc = func(ctx context.Context, customerID int64) (bool, error) {
		return false, errors.New("timeout")
	}

	resp, err := e.svc.HasActiveByVehicle(context.Background(), 20)
	require.NoError(t, err)
	assert.True(t, resp.HasActive)

	resp, err = e.svc.HasActiveByVehicle(context.Background(), 21)
	require.NoError(t, err)
	assert.False(t, resp.HasActive)

	_, err = e.svc.HasActiveByCustomer(context.Background(), 10)
	assert.ErrorIs(t, err, ErrInternal)
}
