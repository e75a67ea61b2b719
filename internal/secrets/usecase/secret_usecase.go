package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	auditUsecase "github.com/allisson/orgvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	cryptoService "github.com/allisson/orgvault/internal/crypto/service"
	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

const (
	// MaxSecretValueSize bounds a single plaintext value.
	MaxSecretValueSize = 64 * 1024

	defaultListLimit = 50
	maxListLimit     = 1000
)

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	txManager    database.TxManager
	secretRepo   SecretRepository
	rotationRepo RotationRepository
	engine       cryptoService.Engine
	auditTrail   auditUsecase.AuditTrail
	logger       *slog.Logger
	now          func() time.Time
}

// Create inserts a placeholder row to reserve the id and key, encrypts with that
// id, then writes the real envelope. All three steps share one transaction and
// the placeholder is also removed explicitly if encryption fails.
func (s *secretUseCase) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.Secret, error) {
	entry := auditDomain.NewSecretAccess(
		nil, actorID, auditDomain.AccessTypeWrite, auditDomain.AccessMethodCreate, reqCtx,
	)
	if input != nil {
		entry.WithMetadata("key", input.Key)
	}

	secret, err := s.create(ctx, input, actorID)
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	entry.SecretID = &secret.ID
	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return secret, nil
}

func (s *secretUseCase) create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
	actorID string,
) (*secretsDomain.Secret, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	name := input.Name
	if name == "" {
		name = input.Key
	}

	secret := &secretsDomain.Secret{
		ID:                   uuid.Must(uuid.NewV7()),
		OrganizationID:       input.OrganizationID,
		Key:                  input.Key,
		Name:                 name,
		Description:          input.Description,
		Category:             input.Category,
		Environment:          input.Environment,
		EncryptedValue:       secretsDomain.PendingEncryptionSentinel,
		KeyVersion:           1,
		IsActive:             true,
		RotationEnabled:      input.RotationEnabled,
		RotationIntervalDays: input.RotationIntervalDays,
		CreatedBy:            actorID,
		UpdatedBy:            actorID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	secret.ScheduleNextRotation(now)

	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.secretRepo.Create(txCtx, secret); err != nil {
			return err
		}

		encrypted, err := s.engine.Encrypt(txCtx, input.Value, secret.ID.String(), secret.KeyVersion)
		if err != nil {
			if _, delErr := s.secretRepo.Delete(txCtx, secret.ID); delErr != nil {
				s.logger.Error("failed to delete secret placeholder",
					slog.String("secret_id", secret.ID.String()),
					slog.Any("error", delErr),
				)
			}
			return err
		}

		secret.EncryptedValue = encrypted.Envelope
		secret.KeyHash = encrypted.KeyHash
		secret.MasterKeyID = encrypted.MasterKeyID
		return s.secretRepo.Update(txCtx, secret, secret.KeyVersion)
	})
	if err != nil {
		return nil, err
	}

	return secret, nil
}

// GetValue loads, checks and decrypts a secret. The audit entry is written even
// when the secret does not exist.
func (s *secretUseCase) GetValue(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	entry := auditDomain.NewSecretAccess(
		&secretID, actorID, auditDomain.AccessTypeRead, auditDomain.AccessMethodRead, reqCtx,
	)

	_, plaintext, err := s.readValue(ctx, func() (*secretsDomain.Secret, error) {
		return s.secretRepo.GetByID(ctx, secretID)
	})
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return plaintext, nil
}

func (s *secretUseCase) GetValueByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	entry := auditDomain.NewSecretAccess(
		nil, actorID, auditDomain.AccessTypeRead, auditDomain.AccessMethodRead, reqCtx,
	).WithMetadata("key", key)

	secret, plaintext, err := s.readValue(ctx, func() (*secretsDomain.Secret, error) {
		return s.secretRepo.GetByKey(ctx, organizationID, key)
	})
	if secret != nil {
		entry.SecretID = &secret.ID
	}
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return plaintext, nil
}

// readValue returns the loaded secret (when found) alongside the outcome so the
// caller can attribute the audit entry.
func (s *secretUseCase) readValue(
	ctx context.Context,
	load func() (*secretsDomain.Secret, error),
) (*secretsDomain.Secret, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	secret, err := load()
	if err != nil {
		return nil, nil, err
	}
	if secret.IsPending() {
		return secret, nil, secretsDomain.ErrSecretNotFound
	}
	if !secret.IsActive {
		return secret, nil, secretsDomain.ErrSecretInactive
	}

	plaintext, err := s.decrypt(ctx, secret)
	if err != nil {
		return secret, nil, err
	}
	return secret, plaintext, nil
}

func (s *secretUseCase) decrypt(ctx context.Context, secret *secretsDomain.Secret) ([]byte, error) {
	plaintext, err := s.engine.Decrypt(ctx, cryptoService.DecryptInput{
		Envelope:        secret.EncryptedValue,
		KeyHash:         secret.KeyHash,
		SecretID:        secret.ID.String(),
		KeyVersion:      secret.KeyVersion,
		MasterKeyIDHint: secret.MasterKeyID,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("failed to decrypt secret",
			slog.String("secret_id", secret.ID.String()),
			slog.Uint64("key_version", uint64(secret.KeyVersion)),
		)
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Update is a rotation. The rotation record is opened as pending outside the
// transaction so it survives a rollback, and is always finalised.
func (s *secretUseCase) Update(
	ctx context.Context,
	secretID uuid.UUID,
	newValue []byte,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.RotationResult, error) {
	entry := auditDomain.NewSecretAccess(
		&secretID, actorID, auditDomain.AccessTypeWrite, auditDomain.AccessMethodRotate, reqCtx,
	)

	result, err := s.rotate(ctx, secretID, newValue, actorID)
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	entry.WithMetadata("rotation_id", result.RotationID.String()).
		WithMetadata("key_version", result.NewVersion)
	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return result, nil
}

func (s *secretUseCase) rotate(
	ctx context.Context,
	secretID uuid.UUID,
	newValue []byte,
	actorID string,
) (*secretsDomain.RotationResult, error) {
	if err := validateValue(newValue); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, err := s.secretRepo.GetByID(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if !secret.IsActive {
		return nil, secretsDomain.ErrSecretInactive
	}

	now := s.now().UTC()
	rotation := &secretsDomain.SecretRotation{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     secret.ID,
		OldValueHash: secretsDomain.HashEncryptedValue(secret.EncryptedValue),
		RotationType: secretsDomain.RotationTypeManual,
		RotatedBy:    actorID,
		Reason:       "secret value updated",
		Status:       secretsDomain.RotationStatusPending,
		CreatedAt:    now,
	}
	if err := s.rotationRepo.Create(ctx, rotation); err != nil {
		return nil, err
	}

	oldVersion := secret.KeyVersion
	var rotated secretsDomain.Secret
	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		// The row may have been rotated or deactivated since the first read.
		current, err := s.secretRepo.GetByIDForUpdate(txCtx, secretID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return secretsDomain.ErrSecretInactive
		}
		if current.KeyVersion != oldVersion {
			return secretsDomain.ErrConcurrentRotation
		}
		rotated = *current

		encrypted, err := s.engine.Encrypt(txCtx, newValue, secret.ID.String(), oldVersion+1)
		if err != nil {
			return err
		}

		rotated.EncryptedValue = encrypted.Envelope
		rotated.KeyHash = encrypted.KeyHash
		rotated.MasterKeyID = encrypted.MasterKeyID
		rotated.KeyVersion = oldVersion + 1
		rotated.UpdatedBy = actorID
		rotated.UpdatedAt = now
		rotated.LastRotatedAt = &now
		rotated.ScheduleNextRotation(now)

		if err := s.secretRepo.Update(txCtx, &rotated, oldVersion); err != nil {
			return err
		}

		completedAt := s.now().UTC()
		rotation.Status = secretsDomain.RotationStatusCompleted
		rotation.CompletedAt = &completedAt
		return s.rotationRepo.Update(txCtx, rotation)
	})
	if err != nil {
		s.failRotation(ctx, rotation, err)
		return nil, err
	}

	return &secretsDomain.RotationResult{
		Secret:     &rotated,
		RotationID: rotation.ID,
		OldVersion: oldVersion,
		NewVersion: rotated.KeyVersion,
	}, nil
}

// failRotation finalises a rotation as failed on a detached context, so the
// record is written even when the caller has gone away.
func (s *secretUseCase) failRotation(ctx context.Context, rotation *secretsDomain.SecretRotation, cause error) {
	completedAt := s.now().UTC()
	rotation.Status = secretsDomain.RotationStatusFailed
	rotation.ErrorMessage = cause.Error()
	rotation.CompletedAt = &completedAt

	if err := s.rotationRepo.Update(database.Detach(ctx), rotation); err != nil {
		s.logger.Error("failed to mark rotation as failed",
			slog.String("rotation_id", rotation.ID.String()),
			slog.String("secret_id", rotation.SecretID.String()),
			slog.Any("error", err),
		)
	}
}

// Deactivate is idempotent for secrets that are already inactive.
func (s *secretUseCase) Deactivate(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) error {
	entry := auditDomain.NewSecretAccess(
		&secretID, actorID, auditDomain.AccessTypeWrite, auditDomain.AccessMethodDeactivate, reqCtx,
	)

	err := s.deactivate(ctx, secretID, actorID)
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return err
	}

	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return nil
}

func (s *secretUseCase) deactivate(ctx context.Context, secretID uuid.UUID, actorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		secret, err := s.secretRepo.GetByIDForUpdate(txCtx, secretID)
		if err != nil {
			return err
		}
		if !secret.IsActive {
			return nil
		}

		secret.IsActive = false
		secret.UpdatedBy = actorID
		secret.UpdatedAt = s.now().UTC()
		return s.secretRepo.Update(txCtx, secret, secret.KeyVersion)
	})
}

// Delete removes the secret. A missing secret returns false with ErrSecretNotFound.
func (s *secretUseCase) Delete(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	entry := auditDomain.NewSecretAccess(
		&secretID, actorID, auditDomain.AccessTypeWrite, auditDomain.AccessMethodDelete, reqCtx,
	)

	deleted, err := s.delete(ctx, secretID)
	if err != nil {
		s.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return false, err
	}

	s.auditTrail.LogAccess(ctx, entry.Succeeded())
	return deleted, nil
}

func (s *secretUseCase) delete(ctx context.Context, secretID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted, err := s.secretRepo.Delete(ctx, secretID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, secretsDomain.ErrSecretNotFound
	}
	return true, nil
}

// List returns secret metadata for an organization. Values are never loaded.
func (s *secretUseCase) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	normalized := secretsDomain.ListSecretsFilter{}
	if filter != nil {
		normalized = *filter
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch {
	case normalized.Limit <= 0:
		normalized.Limit = defaultListLimit
	case normalized.Limit > maxListLimit:
		normalized.Limit = maxListLimit
	}

	return s.secretRepo.List(ctx, organizationID, &normalized)
}

func (s *secretUseCase) ListRotations(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.rotationRepo.ListBySecret(ctx, secretID, limit)
}

// ProcessScheduledRotations pushes next_rotation_at forward for each due secret.
// A failure on one secret is logged and counted; processing continues.
func (s *secretUseCase) ProcessScheduledRotations(
	ctx context.Context,
) (*secretsDomain.ScheduledRotationResult, error) {
	now := s.now().UTC()

	due, err := s.secretRepo.ListDueForRotation(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &secretsDomain.ScheduledRotationResult{SecretIDs: make([]uuid.UUID, 0, len(due))}
	for _, secret := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		secret.ScheduleNextRotation(now)
		if err := s.secretRepo.UpdateSchedule(ctx, secret.ID, secret.NextRotationAt, now); err != nil {
			result.Failed++
			s.logger.Error("failed to reschedule secret rotation",
				slog.String("secret_id", secret.ID.String()),
				slog.Any("error", err),
			)
			continue
		}

		result.Processed++
		result.SecretIDs = append(result.SecretIDs, secret.ID)

		attrs := []any{
			slog.String("secret_id", secret.ID.String()),
			slog.String("organization_id", secret.OrganizationID.String()),
			slog.String("key", secret.Key),
		}
		if secret.NextRotationAt != nil {
			attrs = append(attrs, slog.Time("next_rotation_at", *secret.NextRotationAt))
		}
		s.logger.Info("secret rotation due, schedule advanced", attrs...)
	}

	return result, nil
}

func validateCreateInput(input *secretsDomain.CreateSecretInput) error {
	if input == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "input is required")
	}

	err := validation.ValidateStruct(input,
		validation.Field(&input.OrganizationID, customValidation.NotNilUUID),
		validation.Field(&input.Key,
			validation.Required,
			validation.Length(1, 255),
			customValidation.SecretKey,
		),
		validation.Field(&input.Name, validation.Length(0, 255), customValidation.NoWhitespace),
		validation.Field(&input.Description, validation.Length(0, 1000)),
		validation.Field(&input.Category, validation.Length(0, 100)),
		validation.Field(&input.Environment, validation.Length(0, 100)),
		validation.Field(&input.Value, validation.Required, validation.Length(1, MaxSecretValueSize)),
		validation.Field(&input.RotationIntervalDays,
			validation.When(input.RotationEnabled, validation.Required, validation.Min(1), validation.Max(3650)),
		),
	)
	return customValidation.WrapValidationError(err)
}

func validateValue(value []byte) error {
	err := validation.Validate(value, validation.Required, validation.Length(1, MaxSecretValueSize))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "value: "+err.Error())
	}
	return nil
}

// NewSecretUseCase creates a new secret use case instance with the provided dependencies.
func NewSecretUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	rotationRepo RotationRepository,
	engine cryptoService.Engine,
	auditTrail auditUsecase.AuditTrail,
	logger *slog.Logger,
) SecretUseCase {
	return &secretUseCase{
		txManager:    txManager,
		secretRepo:   secretRepo,
		rotationRepo: rotationRepo,
		engine:       engine,
		auditTrail:   auditTrail,
		logger:       logger,
		now:          time.Now,
	}
}
