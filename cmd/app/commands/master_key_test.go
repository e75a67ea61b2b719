package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	cryptoMocks "github.com/allisson/orgvault/internal/crypto/service/mocks"
)

func TestRunCreateMasterKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plaintext", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, nil, logger, &out, "")
		require.NoError(t, err)

		match := regexp.MustCompile(`MASTER_KEY="([^"]+)"`).FindStringSubmatch(out.String())
		require.Len(t, match, 2)
		raw, err := cryptoDomain.DecodeMasterKey(match[1])
		require.NoError(t, err)
		assert.Len(t, raw, cryptoDomain.MinMasterKeySize)
		assert.Contains(t, out.String(), cryptoDomain.MasterKeyID(raw))
	})

	t.Run("kms", func(t *testing.T) {
		kmsService := &cryptoMocks.MockKMSService{}
		keeper := &cryptoMocks.MockKMSKeeper{}
		wrapped := base64.StdEncoding.EncodeToString([]byte("ciphertext"))

		kmsService.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil)
		kmsService.On("WrapMasterKey", ctx, keeper, mock.AnythingOfType("[]uint8")).Return(wrapped, nil)
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, logger, &out, "base64key://abc")
		require.NoError(t, err)

		assert.Contains(t, out.String(), `KMS_KEY_URI="base64key://abc"`)
		assert.Contains(t, out.String(), `MASTER_KEY="`+wrapped+`"`)
		kmsService.AssertExpectations(t)
		keeper.AssertExpectations(t)
	})

	t.Run("open-keeper-error", func(t *testing.T) {
		kmsService := &cryptoMocks.MockKMSService{}
		kmsService.On("OpenKeeper", ctx, "gcpkms://bad").Return(nil, errors.New("no credentials"))

		err := RunCreateMasterKey(ctx, kmsService, logger, &bytes.Buffer{}, "gcpkms://bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("wrap-error", func(t *testing.T) {
		kmsService := &cryptoMocks.MockKMSService{}
		keeper := &cryptoMocks.MockKMSKeeper{}

		kmsService.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil)
		kmsService.On("WrapMasterKey", ctx, keeper, mock.Anything).Return("", errors.New("denied"))
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, kmsService, logger, &out, "base64key://abc")
		require.Error(t, err)
		assert.Empty(t, out.String())
		keeper.AssertExpectations(t)
	})
}
