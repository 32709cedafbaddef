package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

const pgForeignKeyViolation = "23503"

var bookingColumns = []string{
	"id",
	"customer_id",
	"vehicle_id",
	"service_id",
	"booking_date",
	"booking_time",
	"status",
	"complaint",
	"payment_method",
	"payment_proof",
	"service_price",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"vehicle_id",
			"service_id",
			"booking_date",
			"booking_time",
			"status",
			"complaint",
			"payment_method",
			"payment_proof",
			"service_price",
		).
		Values(
			booking.CustomerID,
			booking.VehicleID,
			booking.ServiceID,
			dateParam(booking.Date),
			booking.Time,
			string(booking.Status),
			booking.Complaint,
			booking.PaymentMethod,
			booking.PaymentProof,
			booking.ServicePrice,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, mapWriteError("Create - execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// CreateLineItems сохраняет товары бронирования одним INSERT в порядке следования
func (r *Repository) CreateLineItems(ctx context.Context, bookingID int64, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("booking_products").
		Columns("booking_id", "product_id", "price", "quantity", "position")

	for i, item := range items {
		builder = builder.Values(bookingID, item.ProductID, item.Price, item.Quantity, i)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateLineItems - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("CreateLineItems - execute insert", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CreateLineItems - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected != int64(len(items)) {
		return fmt.Errorf("%w: CreateLineItems - inserted %d of %d items", ErrExecQuery, rowsAffected, len(items))
	}

	return nil
}

// LockDay берет блокировку строки дня в booking_days
// Все проверки лимита на эту дату внутри транзакции выполняются последовательно
func (r *Repository) LockDay(ctx context.Context, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertQuery, insertArgs, err := psqlbuilder.Insert("booking_days").
		Columns("day").
		Values(dateParam(date)).
		Suffix("ON CONFLICT (day) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDay - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: LockDay - insert day: %w", ErrExecQuery, err)
	}

	lockQuery, lockArgs, err := psqlbuilder.Select("day").
		From("booking_days").
		Where(squirrel.Eq{"day": dateParam(date)}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDay - build select query: %v", ErrBuildQuery, err)
	}

	var locked time.Time
	if err := executor.QueryRowContext(ctx, lockQuery, lockArgs...).Scan(&locked); err != nil {
		return fmt.Errorf("%w: LockDay - lock day: %w", ErrExecQuery, err)
	}

	return nil
}

// CountActiveByDate считает бронирования на дату, которые занимают место (не завершены и не отменены)
func (r *Repository) CountActiveByDate(ctx context.Context, date time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"booking_date": dateParam(date)}).
		Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveByDate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveByDate - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// GetByID получает бронирование по ID вместе с товарами
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	if err := r.attachItems(ctx, []*domain.Booking{booking}); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByCustomerID получает бронирования клиента, сначала новые
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingsFilter{CustomerID: &customerID})
}

// List получает бронирования по фильтру
//
// Для конкретной даты сортировка по времени визита (ASC),
// иначе сначала новые.
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_date": dateParam(*filter.Date)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.OrderBy("booking_time ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "booking_time DESC", "id DESC")
	}

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(filter.Offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// ListIDsByDateAndStatus возвращает ID бронирований на дату в указанном статусе
func (r *Repository) ListIDsByDateAndStatus(ctx context.Context, date time.Time, status domain.Status) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("bookings").
		Where(squirrel.Eq{"booking_date": dateParam(date), "status": string(status)}).
		OrderBy("booking_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListIDsByDateAndStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListIDsByDateAndStatus - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListIDsByDateAndStatus - scan id: %w", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListIDsByDateAndStatus - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

// CompareAndSetStatus меняет статус, только если текущий статус равен expected
// Возвращает ErrStatusConflict, если статус уже изменился, и ErrBookingNotFound, если записи нет
func (r *Repository) CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.Status) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(next)).
		Where(squirrel.Eq{"id": id, "status": string(expected)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CompareAndSetStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CompareAndSetStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CompareAndSetStatus - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBookingNotFound
	}
	return ErrStatusConflict
}

// Reschedule переносит бронирование на другую дату и время
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, t types.TimeString) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("booking_date", dateParam(date)).
		Set("booking_time", t).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reschedule - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// HasActiveByVehicle true, если на автомобиль есть незавершенные бронирования
func (r *Repository) HasActiveByVehicle(ctx context.Context, vehicleID int64) (bool, error) {
	return r.hasActive(ctx, "HasActiveByVehicle", squirrel.Eq{"vehicle_id": vehicleID})
}

// HasActiveByCustomer true, если у клиента есть незавершенные бронирования
func (r *Repository) HasActiveByCustomer(ctx context.Context, customerID int64) (bool, error) {
	return r.hasActive(ctx, "HasActiveByCustomer", squirrel.Eq{"customer_id": customerID})
}

func (r *Repository) hasActive(ctx context.Context, op string, where squirrel.Eq) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("bookings").
		Where(where).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s - scan: %w", ErrScanRow, op, err)
	}

	return true, nil
}

// GetNotificationView собирает данные для сообщения клиенту
func (r *Repository) GetNotificationView(ctx context.Context, id int64) (*domain.NotificationView, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"b.id",
		"c.name",
		"c.phone",
		"s.name",
		"v.brand",
		"v.model",
		"v.license_plate",
		"b.booking_date",
		"b.booking_time",
		"b.complaint",
		"b.payment_method",
		"b.status",
	).
		From("bookings b").
		Join("customers c ON c.id = b.customer_id").
		Join("vehicles v ON v.id = b.vehicle_id").
		Join("services s ON s.id = b.service_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetNotificationView - build select query: %v", ErrBuildQuery, err)
	}

	var view domain.NotificationView
	var status string
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&view.BookingID,
		&view.CustomerName,
		&view.CustomerPhone,
		&view.ServiceName,
		&view.VehicleBrand,
		&view.VehicleModel,
		&view.LicensePlate,
		&view.Date,
		&view.Time,
		&view.Complaint,
		&view.PaymentMethod,
		&status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetNotificationView - scan: %w", ErrScanRow, err)
	}
	view.Status = domain.Status(status)

	return &view, nil
}

func (r *Repository) exists(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: exists - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: exists - scan: %w", ErrScanRow, err)
	}

	return count > 0, nil
}

// attachItems подгружает товары для набора бронирований одним запросом
func (r *Repository) attachItems(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := make([]int64, 0, len(bookings))
	byID := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		b.Items = make([]domain.LineItem, 0)
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	query, args, err := psqlbuilder.Select("id", "booking_id", "product_id", "price", "quantity", "position").
		From("booking_products").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("booking_id ASC", "position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachItems - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.BookingID, &item.ProductID, &item.Price, &item.Quantity, &item.Position); err != nil {
			return fmt.Errorf("%w: attachItems - scan row: %w", ErrScanRow, err)
		}
		if b, ok := byID[item.BookingID]; ok {
			b.Items = append(b.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachItems - rows error: %w", ErrScanRow, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var status string
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.VehicleID,
		&booking.ServiceID,
		&booking.Date,
		&booking.Time,
		&status,
		&booking.Complaint,
		&booking.PaymentMethod,
		&booking.PaymentProof,
		&booking.ServicePrice,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.Status(status)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// mapWriteError переводит нарушение внешнего ключа в ErrForeignKeyViolation,
// остальные ошибки драйвера оборачивает с сохранением причины
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s: %s", ErrForeignKeyViolation, op, pqErr.Constraint)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, op, err)
}

func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}

func statusStrings(statuses []domain.Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
