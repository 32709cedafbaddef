package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"
)

const (
	defaultMaxRetries = 3

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx ошибка открытия транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrRetriesExhausted транзакция так и не прошла после всех повторов
	ErrRetriesExhausted = errors.New("txmanager: serialization retries exhausted")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryRecorder учет повторов транзакций (*metrics.Metrics, может быть nil)
type RetryRecorder interface {
	TxRetry(reason string)
}

// Manager выполняет функцию в транзакции, кладя её в контекст
// Репозитории достают транзакцию через dbmetrics.GetExecutor
type Manager struct {
	db         TxBeginner
	maxRetries int
	recorder   RetryRecorder
}

// Option настройка менеджера
type Option func(*Manager)

// WithMaxRetries количество повторов при конфликте сериализации
func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithRetryRecorder подключает учет повторов
func WithRetryRecorder(r RetryRecorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, opts ...Option) *Manager {
	m := &Manager{
		db:         db,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию (READ COMMITTED)
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции
// При конфликте сериализации или дедлоке транзакция повторяется целиком
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			if m.recorder != nil {
				m.recorder.TxRetry(retryReason(lastErr))
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		lastErr = m.once(ctx, opts, fn)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

func (m *Manager) once(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable true для ошибок Postgres, после которых транзакцию можно повторить
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
}

func retryReason(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgDeadlockDetected {
		return "deadlock"
	}
	return "serialization"
}
