package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orgvault/internal/errors"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE secrets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		assert.IsType(t, &sql.Tx{}, querier)
		_, err := querier.ExecContext(ctx, "UPDATE secrets SET is_active = false")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.Equal(t, assert.AnError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailure(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "failed to rollback transaction")
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.False(t, called)
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.ErrorContains(t, err, "failed to commit transaction")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestWithTx_Nested(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := txManager.WithTx(context.Background(), func(outer context.Context) error {
		return txManager.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, GetTx(outer, db), GetTx(inner, db))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Same(t, db, GetTx(context.Background(), db))
}

func TestDetach(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_ = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		detached := Detach(cancelCtx)
		assert.NoError(t, detached.Err())
		assert.Same(t, db, GetTx(detached, db))
		return assert.AnError
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
