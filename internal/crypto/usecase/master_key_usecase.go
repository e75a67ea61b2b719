package usecase

import (
	"context"
	"log/slog"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	apperrors "github.com/allisson/orgvault/internal/errors"
)

type masterKeyUseCase struct {
	keyring *cryptoDomain.Keyring
	logger  *slog.Logger
}

// NewMasterKeyUseCase creates a MasterKeyUseCase bound to keyring.
func NewMasterKeyUseCase(keyring *cryptoDomain.Keyring, logger *slog.Logger) MasterKeyUseCase {
	return &masterKeyUseCase{
		keyring: keyring,
		logger:  logger,
	}
}

// AddMasterKey implements MasterKeyUseCase. raw is zeroed before returning.
func (m *masterKeyUseCase) AddMasterKey(ctx context.Context, raw []byte, rotatedBy string) (string, error) {
	defer cryptoDomain.Zero(raw)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rotatedBy == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "rotated by is required")
	}

	var previousID string
	if current, err := m.keyring.CurrentKey(); err == nil {
		previousID = current.ID
	}

	keyID, err := m.keyring.AddKey(raw)
	if err != nil {
		m.logger.WarnContext(ctx, "master key rejected",
			slog.String("rotated_by", rotatedBy),
			slog.Any("error", err),
		)
		return "", err
	}

	m.logger.InfoContext(ctx, "master key added",
		slog.String("key_id", keyID),
		slog.String("previous_key_id", previousID),
		slog.String("rotated_by", rotatedBy),
		slog.Int("keyring_size", m.keyring.Len()),
	)
	return keyID, nil
}
