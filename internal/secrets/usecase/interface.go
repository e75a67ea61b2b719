// Package usecase implements the secret lifecycle: creation, reads, rotation,
// deactivation, deletion and scheduled rotation bookkeeping.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// SecretRepository defines the interface for Secret persistence operations.
type SecretRepository interface {
	// Create inserts a secret. Returns ErrSecretAlreadyExists when the
	// organization already uses the key.
	Create(ctx context.Context, secret *secretsDomain.Secret) error

	// Update writes every mutable field. The write only applies while the stored
	// key version equals expectedVersion; otherwise ErrConcurrentRotation.
	Update(ctx context.Context, secret *secretsDomain.Secret, expectedVersion uint) error

	// UpdateSchedule moves next_rotation_at without touching the value.
	UpdateSchedule(ctx context.Context, secretID uuid.UUID, nextRotationAt *time.Time, updatedAt time.Time) error

	// Delete removes a secret and reports whether it existed.
	Delete(ctx context.Context, secretID uuid.UUID) (bool, error)

	GetByID(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error)
	// GetByIDForUpdate reads a secret and locks its row until the surrounding
	// transaction ends. It must run inside TxManager.WithTx.
	GetByIDForUpdate(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error)
	GetByKey(ctx context.Context, organizationID uuid.UUID, key string) (*secretsDomain.Secret, error)

	// List returns metadata only; EncryptedValue is left empty.
	List(
		ctx context.Context,
		organizationID uuid.UUID,
		filter *secretsDomain.ListSecretsFilter,
	) ([]*secretsDomain.Secret, error)

	// ListDueForRotation returns active secrets with rotation enabled and
	// next_rotation_at <= now.
	ListDueForRotation(ctx context.Context, now time.Time) ([]*secretsDomain.Secret, error)
}

// RotationRepository defines the interface for SecretRotation persistence.
type RotationRepository interface {
	Create(ctx context.Context, rotation *secretsDomain.SecretRotation) error
	// Update writes status, error message and completion time.
	Update(ctx context.Context, rotation *secretsDomain.SecretRotation) error
	// ListBySecret returns rotations for secretID, most recent first.
	ListBySecret(ctx context.Context, secretID uuid.UUID, limit int) ([]*secretsDomain.SecretRotation, error)
}

// SecretUseCase defines the interface for secret lifecycle business logic.
//
// Every operation on a single secret writes exactly one audit entry, whether it
// succeeds or fails.
type SecretUseCase interface {
	Create(
		ctx context.Context,
		input *secretsDomain.CreateSecretInput,
		actorID string,
		reqCtx auditDomain.RequestContext,
	) (*secretsDomain.Secret, error)

	// GetValue decrypts a secret. Callers should zero the returned slice after use.
	GetValue(ctx context.Context, secretID uuid.UUID, actorID string, reqCtx auditDomain.RequestContext) ([]byte, error)

	// GetValueByKey is GetValue addressed by organization and key.
	GetValueByKey(
		ctx context.Context,
		organizationID uuid.UUID,
		key string,
		actorID string,
		reqCtx auditDomain.RequestContext,
	) ([]byte, error)

	// Update rotates the secret to newValue under the next key version.
	Update(
		ctx context.Context,
		secretID uuid.UUID,
		newValue []byte,
		actorID string,
		reqCtx auditDomain.RequestContext,
	) (*secretsDomain.RotationResult, error)

	Deactivate(ctx context.Context, secretID uuid.UUID, actorID string, reqCtx auditDomain.RequestContext) error

	Delete(ctx context.Context, secretID uuid.UUID, actorID string, reqCtx auditDomain.RequestContext) (bool, error)

	List(
		ctx context.Context,
		organizationID uuid.UUID,
		filter *secretsDomain.ListSecretsFilter,
	) ([]*secretsDomain.Secret, error)

	ListRotations(ctx context.Context, secretID uuid.UUID, limit int) ([]*secretsDomain.SecretRotation, error)

	// ProcessScheduledRotations advances next_rotation_at for every due secret.
	// New values are not generated here.
	ProcessScheduledRotations(ctx context.Context) (*secretsDomain.ScheduledRotationResult, error)
}
