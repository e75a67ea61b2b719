package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokensMocks "github.com/allisson/orgvault/internal/tokens/usecase/mocks"
)

func TestRunRevokeToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokenID := uuid.Must(uuid.NewV7())

	t.Run("success", func(t *testing.T) {
		useCase := &tokensMocks.MockTokenUseCase{}
		useCase.On("Revoke", ctx, tokenID, "ops@example.com", mock.Anything).Return(true, nil)

		var out bytes.Buffer
		err := RunRevokeToken(ctx, useCase, logger, &out, tokenID.String(), "ops@example.com", "text")
		require.NoError(t, err)
		assert.Equal(t, "Token "+tokenID.String()+" revoked\n", out.String())
		useCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		useCase := &tokensMocks.MockTokenUseCase{}
		useCase.On("Revoke", ctx, tokenID, "ops", mock.Anything).Return(true, nil)

		var out bytes.Buffer
		require.NoError(t, RunRevokeToken(ctx, useCase, logger, &out, tokenID.String(), "ops", "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, tokenID.String(), result["token_id"])
		assert.Equal(t, true, result["revoked"])
	})

	t.Run("invalid-id", func(t *testing.T) {
		err := RunRevokeToken(ctx, &tokensMocks.MockTokenUseCase{}, logger, &bytes.Buffer{}, "nope", "ops", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token id")
	})

	t.Run("missing-revoked-by", func(t *testing.T) {
		err := RunRevokeToken(ctx, &tokensMocks.MockTokenUseCase{}, logger, &bytes.Buffer{}, tokenID.String(), "", "text")
		require.Error(t, err)
	})

	t.Run("not-found", func(t *testing.T) {
		useCase := &tokensMocks.MockTokenUseCase{}
		useCase.On("Revoke", ctx, tokenID, "ops", mock.Anything).Return(false, errors.New("token not found"))

		err := RunRevokeToken(ctx, useCase, logger, &bytes.Buffer{}, tokenID.String(), "ops", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to revoke token")
	})
}
