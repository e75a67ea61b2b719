package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

var rotationRowColumns = []string{
	"id", "secret_id", "old_value_hash", "rotation_type", "rotated_by", "reason", "status",
	"error_message", "created_at", "completed_at",
}

func newTestRotation() *secretsDomain.SecretRotation {
	return &secretsDomain.SecretRotation{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     uuid.Must(uuid.NewV7()),
		OldValueHash: secretsDomain.HashEncryptedValue("AQID"),
		RotationType: secretsDomain.RotationTypeManual,
		RotatedBy:    "alice",
		Reason:       "secret value updated",
		Status:       secretsDomain.RotationStatusPending,
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgreSQLRotationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRotationRepository(db)
		rotation := newTestRotation()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secret_rotations")).
			WithArgs(
				rotation.ID.String(), rotation.SecretID.String(), rotation.OldValueHash, "manual", "alice",
				"secret value updated", "pending", nil, rotation.CreatedAt, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, rotation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateFailed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRotationRepository(db)
		rotation := newTestRotation()
		completedAt := rotation.CreatedAt.Add(time.Second)
		rotation.Status = secretsDomain.RotationStatusFailed
		rotation.ErrorMessage = "secret was modified concurrently"
		rotation.CompletedAt = &completedAt

		mock.ExpectExec(regexp.QuoteMeta("UPDATE secret_rotations SET status = $1")).
			WithArgs("failed", "secret was modified concurrently", completedAt, rotation.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, rotation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRotationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE secret_rotations")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, newTestRotation())
		assert.ErrorIs(t, err, secretsDomain.ErrRotationNotFound)
	})

	t.Run("ListBySecret", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRotationRepository(db)
		rotation := newTestRotation()
		completedAt := rotation.CreatedAt.Add(time.Second)

		rows := sqlmock.NewRows(rotationRowColumns).AddRow(
			rotation.ID.String(), rotation.SecretID.String(), rotation.OldValueHash, "manual", "alice",
			"secret value updated", "completed", nil, rotation.CreatedAt, completedAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM secret_rotations")).
			WithArgs(rotation.SecretID.String(), 10).
			WillReturnRows(rows)

		rotations, err := repo.ListBySecret(ctx, rotation.SecretID, 10)
		require.NoError(t, err)
		require.Len(t, rotations, 1)
		assert.Equal(t, secretsDomain.RotationStatusCompleted, rotations[0].Status)
		require.NotNil(t, rotations[0].CompletedAt)
		assert.Equal(t, completedAt, *rotations[0].CompletedAt)
		assert.Empty(t, rotations[0].ErrorMessage)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRotationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secret_rotations")).
			WillReturnError(errors.New("disk full"))

		err := repo.Create(ctx, newTestRotation())
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestMySQLRotationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRotationRepository(db)
		rotation := newTestRotation()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secret_rotations")).
			WithArgs(
				rotation.ID[:], rotation.SecretID[:], rotation.OldValueHash, "manual", "alice",
				"secret value updated", "pending", nil, rotation.CreatedAt, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, rotation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListBySecret", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRotationRepository(db)
		rotation := newTestRotation()

		rows := sqlmock.NewRows(rotationRowColumns).AddRow(
			rotation.ID[:], rotation.SecretID[:], rotation.OldValueHash, "manual", "alice",
			nil, "failed", "boom", rotation.CreatedAt, nil,
		)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE secret_id = ?")).
			WithArgs(rotation.SecretID[:], 5).
			WillReturnRows(rows)

		rotations, err := repo.ListBySecret(ctx, rotation.SecretID, 5)
		require.NoError(t, err)
		require.Len(t, rotations, 1)
		assert.Equal(t, rotation.ID, rotations[0].ID)
		assert.Equal(t, "boom", rotations[0].ErrorMessage)
		assert.Empty(t, rotations[0].Reason)
		assert.Nil(t, rotations[0].CompletedAt)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRotationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE secret_rotations")).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, newTestRotation()), secretsDomain.ErrRotationNotFound)
	})
}
