package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/catalog"
)

// memoryStore хранилище в памяти с транзакциями и блокировкой дня
// Записи внутри транзакции видны только ей и применяются при коммите
type memoryStore struct {
	mu       sync.Mutex
	dayLock  sync.Mutex
	nextID   int64
	bookings []*domain.Booking
	items    map[int64][]domain.LineItem

	services map[int64]domain.Service
	products []domain.Product

	createErr error
	itemsErr  error
	// txErr возвращается из DoSerializable вместо результата fn, записи отбрасываются
	txErr error
}

type txState struct {
	locked   bool
	bookings []*domain.Booking
	items    map[int64][]domain.LineItem
}

type txKey struct{}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items:    make(map[int64][]domain.LineItem),
		services: make(map[int64]domain.Service),
	}
}

func (s *memoryStore) seed(date time.Time, status domain.Status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.nextID++
		s.bookings = append(s.bookings, &domain.Booking{ID: s.nextID, Date: date, Status: status})
	}
}

func (s *memoryStore) activeOn(date time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countActive(s.bookings, date)
}

func (s *memoryStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func countActive(bookings []*domain.Booking, date time.Time) int {
	n := 0
	for _, b := range bookings {
		if b.Date.Equal(date) && b.Status.IsActive() {
			n++
		}
	}
	return n
}

func txFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey{}).(*txState)
	return st
}

// TransactionManager

func (s *memoryStore) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &txState{items: make(map[int64][]domain.LineItem)}
	err := fn(context.WithValue(ctx, txKey{}, st))
	if err == nil && s.txErr != nil {
		err = s.txErr
	}

	if err == nil {
		s.mu.Lock()
		s.bookings = append(s.bookings, st.bookings...)
		for id, items := range st.items {
			s.items[id] = items
		}
		s.mu.Unlock()
	}

	if st.locked {
		s.dayLock.Unlock()
	}
	return err
}

// BookingRepository

func (s *memoryStore) LockDay(ctx context.Context, date time.Time) error {
	st := txFrom(ctx)
	if st == nil {
		return bookingRepo.ErrNotInTransaction
	}
	s.dayLock.Lock()
	st.locked = true
	return nil
}

func (s *memoryStore) CountActiveByDate(ctx context.Context, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := countActive(s.bookings, date)
	if st := txFrom(ctx); st != nil {
		n += countActive(st.bookings, date)
	}
	return n, nil
}

func (s *memoryStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	s.nextID++
	booking.ID = s.nextID
	s.mu.Unlock()

	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	if st := txFrom(ctx); st != nil {
		st.bookings = append(st.bookings, booking)
	} else {
		s.mu.Lock()
		s.bookings = append(s.bookings, booking)
		s.mu.Unlock()
	}
	return booking, nil
}

func (s *memoryStore) CreateLineItems(ctx context.Context, bookingID int64, items []domain.LineItem) error {
	if s.itemsErr != nil {
		return s.itemsErr
	}
	if len(items) == 0 {
		return nil
	}
	if st := txFrom(ctx); st != nil {
		st.items[bookingID] = items
		return nil
	}
	s.mu.Lock()
	s.items[bookingID] = items
	s.mu.Unlock()
	return nil
}

// CatalogRepository

func (s *memoryStore) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	service, ok := s.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return &service, nil
}

func (s *memoryStore) GetProducts(ctx context.Context, serviceID int64, productIDs []int64) ([]domain.Product, error) {
	wanted := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	result := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.ServiceID == serviceID && wanted[p.ID] {
			result = append(result, p)
		}
	}
	return result, nil
}

// Notifier

type recordingNotifier struct {
	mu      sync.Mutex
	created []int64
}

func (n *recordingNotifier) BookingCreated(bookingID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, bookingID)
}

func (n *recordingNotifier) calls() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.created...)
}

// MetricsRecorder

type recordingMetrics struct {
	mu       sync.Mutex
	created  map[string]int
	rejected map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{created: map[string]int{}, rejected: map[string]int{}}
}

func (m *recordingMetrics) BookingCreated(paymentMethod string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[paymentMethod]++
}

func (m *recordingMetrics) BookingRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}
