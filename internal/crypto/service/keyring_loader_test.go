package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
)

func encodeKey(seed byte) string {
	return base64.StdEncoding.EncodeToString(testMasterKey(seed))
}

func TestLoadKeyring(t *testing.T) {
	ctx := context.Background()
	kms := NewKMSService()

	t.Run("MasterKeyOnly", func(t *testing.T) {
		keyring, err := LoadKeyring(ctx, KeyringConfig{MasterKey: encodeKey(0x01)}, kms)
		require.NoError(t, err)
		defer keyring.Close()

		current, err := keyring.CurrentKey()
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.MasterKeyID(testMasterKey(0x01)), current.ID)
		assert.Equal(t, 1, keyring.Len())
	})

	t.Run("PreviousKeys", func(t *testing.T) {
		cfg := KeyringConfig{
			MasterKey:          encodeKey(0x03),
			PreviousMasterKeys: strings.Join([]string{encodeKey(0x01), " ", encodeKey(0x02), encodeKey(0x03)}, ","),
		}
		keyring, err := LoadKeyring(ctx, cfg, kms)
		require.NoError(t, err)
		defer keyring.Close()

		assert.Equal(t, 3, keyring.Len())
		current, err := keyring.CurrentKey()
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.MasterKeyID(testMasterKey(0x03)), current.ID)

		_, err = keyring.KeyByID(cryptoDomain.MasterKeyID(testMasterKey(0x01)))
		assert.NoError(t, err)
	})

	t.Run("MissingMasterKey", func(t *testing.T) {
		_, err := LoadKeyring(ctx, KeyringConfig{MasterKey: "  "}, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
	})

	t.Run("ShortMasterKey", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("too-short"))
		_, err := LoadKeyring(ctx, KeyringConfig{MasterKey: short}, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyTooShort)
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		_, err := LoadKeyring(ctx, KeyringConfig{MasterKey: "not base64!"}, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKeyBase64)
	})

	t.Run("RetentionCap", func(t *testing.T) {
		cfg := KeyringConfig{
			MasterKey:          encodeKey(0x03),
			PreviousMasterKeys: encodeKey(0x01) + "," + encodeKey(0x02),
			MaxKeys:            2,
		}
		_, err := LoadKeyring(ctx, cfg, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyringFull)
	})

	t.Run("KMSWrappedKeys", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		keeper, err := kms.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		wrapped, err := kms.WrapMasterKey(ctx, keeper, testMasterKey(0x05))
		require.NoError(t, err)

		keyring, err := LoadKeyring(ctx, KeyringConfig{MasterKey: wrapped, KMSKeyURI: keyURI}, kms)
		require.NoError(t, err)
		defer keyring.Close()

		current, err := keyring.CurrentKey()
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.MasterKeyHash(testMasterKey(0x05)), current.KeyHash)
	})

	t.Run("KMSUnwrapFailure", func(t *testing.T) {
		_, err := LoadKeyring(ctx, KeyringConfig{
			MasterKey: encodeKey(0x05),
			KMSKeyURI: generateLocalSecretsURI(t),
		}, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyUnwrapFailed)
	})
}

// generateLocalSecretsURI returns a base64key:// URI backed by a random key.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}
