package txmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"
)

type retryCounter struct {
	reasons []string
}

func (r *retryCounter) TxRetry(reason string) {
	r.reasons = append(r.reasons, reason)
}

func newManager(t *testing.T, opts ...Option) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTransactionManager(dbmetrics.New(db, nil), opts...), mock
}

func TestDoSerializable_CommitsOnSuccess(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_days").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		require.True(t, dbmetrics.IsInTransaction(ctx))
		executor := dbmetrics.GetExecutor(ctx, nil)
		_, err := executor.ExecContext(ctx, "INSERT INTO booking_days (day) VALUES ($1)", "2026-10-18")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_RollsBackOnError(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_RollsBackOnPanic(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = m.DoSerializable(context.Background(), func(ctx context.Context) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_RetriesSerializationFailure(t *testing.T) {
	recorder := &retryCounter{}
	m, mock := newManager(t, WithRetryRecorder(recorder))

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"serialization"}, recorder.reasons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	m, mock := newManager(t, WithMaxRetries(1))

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return &pq.Error{Code: "40P01"}
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_NonRetryableErrorIsNotRetried(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return &pq.Error{Code: "23503"}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_NestedReusesOuterTransaction(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return m.Do(ctx, func(inner context.Context) error {
			outer, _ := dbmetrics.TxFromContext(ctx)
			nested, _ := dbmetrics.TxFromContext(inner)
			assert.Same(t, outer, nested)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_BeginFailure(t *testing.T) {
	m, mock := newManager(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		t.Fatal("fn must not be called")
		return nil
	})

	assert.ErrorIs(t, err, ErrBeginTx)
}
