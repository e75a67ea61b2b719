package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	"github.com/allisson/orgvault/internal/crypto/usecase/mocks"
	apperrors "github.com/allisson/orgvault/internal/errors"
	metricsMocks "github.com/allisson/orgvault/internal/metrics/mocks"
)

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, cryptoDomain.MinMasterKeySize)
}

func newKeyring(t *testing.T, keys ...[]byte) *cryptoDomain.Keyring {
	t.Helper()
	keyring := cryptoDomain.NewKeyring(3)
	for _, key := range keys {
		_, err := keyring.AddKey(key)
		require.NoError(t, err)
	}
	t.Cleanup(keyring.Close)
	return keyring
}

func TestMasterKeyUseCase_AddMasterKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1))
		previous, err := keyring.CurrentKey()
		require.NoError(t, err)
		previousID := previous.ID

		raw := testKey(2)
		keyID, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, raw, "admin")
		require.NoError(t, err)

		assert.Equal(t, cryptoDomain.MasterKeyID(testKey(2)), keyID)
		assert.Equal(t, make([]byte, len(raw)), raw)

		current, err := keyring.CurrentKey()
		require.NoError(t, err)
		assert.Equal(t, keyID, current.ID)

		old, err := keyring.KeyByID(previousID)
		require.NoError(t, err)
		assert.False(t, old.IsActive)
	})

	t.Run("EmptyKeyring", func(t *testing.T) {
		keyring := newKeyring(t)

		keyID, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, testKey(3), "admin")
		require.NoError(t, err)
		assert.Equal(t, 1, keyring.Len())
		assert.NotEmpty(t, keyID)
	})

	t.Run("MissingRotatedBy", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1))

		_, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, testKey(2), "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Equal(t, 1, keyring.Len())
	})

	t.Run("TooShort", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1))

		_, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, []byte("short"), "admin")
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyTooShort)
	})

	t.Run("Duplicate", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1))

		_, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, testKey(1), "admin")
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyAlreadyExists)
	})

	t.Run("KeyringFull", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1), testKey(2), testKey(3))

		_, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(ctx, testKey(4), "admin")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyringFull)
		assert.Equal(t, 3, keyring.Len())
	})

	t.Run("CancelledContext", func(t *testing.T) {
		keyring := newKeyring(t, testKey(1))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewMasterKeyUseCase(keyring, logger).AddMasterKey(cancelled, testKey(2), "admin")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, keyring.Len())
	})
}

func TestMasterKeyUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	raw := testKey(9)

	t.Run("Success", func(t *testing.T) {
		next := &mocks.MockMasterKeyUseCase{}
		m := &metricsMocks.MockBusinessMetrics{}

		next.On("AddMasterKey", ctx, raw, "admin").Return("abc", nil)
		m.On("RecordOperation", mock.Anything, "crypto", "master_key_add", "success").Return().Once()
		m.On("RecordDuration", mock.Anything, "crypto", "master_key_add", mock.Anything, "success").
			Return().Once()

		keyID, err := NewMasterKeyUseCaseWithMetrics(next, m).AddMasterKey(ctx, raw, "admin")
		require.NoError(t, err)
		assert.Equal(t, "abc", keyID)
		m.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		next := &mocks.MockMasterKeyUseCase{}
		m := &metricsMocks.MockBusinessMetrics{}

		next.On("AddMasterKey", ctx, raw, "admin").Return("", cryptoDomain.ErrKeyringFull)
		m.On("RecordOperation", mock.Anything, "crypto", "master_key_add", "error").Return().Once()
		m.On("RecordDuration", mock.Anything, "crypto", "master_key_add", mock.Anything, "error").
			Return().Once()

		_, err := NewMasterKeyUseCaseWithMetrics(next, m).AddMasterKey(ctx, raw, "admin")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyringFull)
		m.AssertExpectations(t)
	})
}
