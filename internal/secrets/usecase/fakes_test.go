package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// memorySecretRepository is an in-memory SecretRepository with the same
// version check as the SQL implementations.
type memorySecretRepository struct {
	mu      sync.Mutex
	secrets map[uuid.UUID]secretsDomain.Secret
}

func newMemorySecretRepository() *memorySecretRepository {
	return &memorySecretRepository{secrets: make(map[uuid.UUID]secretsDomain.Secret)}
}

func (r *memorySecretRepository) Create(_ context.Context, secret *secretsDomain.Secret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.secrets {
		if existing.OrganizationID == secret.OrganizationID && existing.Key == secret.Key {
			return secretsDomain.ErrSecretAlreadyExists
		}
	}
	r.secrets[secret.ID] = *secret
	return nil
}

func (r *memorySecretRepository) Update(_ context.Context, secret *secretsDomain.Secret, expectedVersion uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.secrets[secret.ID]
	if !ok {
		return secretsDomain.ErrSecretNotFound
	}
	if existing.KeyVersion != expectedVersion {
		return secretsDomain.ErrConcurrentRotation
	}
	r.secrets[secret.ID] = *secret
	return nil
}

func (r *memorySecretRepository) UpdateSchedule(
	_ context.Context,
	secretID uuid.UUID,
	nextRotationAt *time.Time,
	updatedAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.secrets[secretID]
	if !ok {
		return secretsDomain.ErrSecretNotFound
	}
	existing.NextRotationAt = nextRotationAt
	existing.UpdatedAt = updatedAt
	r.secrets[secretID] = existing
	return nil
}

func (r *memorySecretRepository) Delete(_ context.Context, secretID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.secrets[secretID]; !ok {
		return false, nil
	}
	delete(r.secrets, secretID)
	return true, nil
}

func (r *memorySecretRepository) GetByID(_ context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.secrets[secretID]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	return &existing, nil
}

func (r *memorySecretRepository) GetByIDForUpdate(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	return r.GetByID(ctx, secretID)
}

func (r *memorySecretRepository) GetByKey(
	_ context.Context,
	organizationID uuid.UUID,
	key string,
) (*secretsDomain.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.secrets {
		if existing.OrganizationID == organizationID && existing.Key == key {
			found := existing
			return &found, nil
		}
	}
	return nil, secretsDomain.ErrSecretNotFound
}

func (r *memorySecretRepository) List(
	_ context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*secretsDomain.Secret
	for _, existing := range r.secrets {
		if existing.OrganizationID != organizationID || (!existing.IsActive && !filter.IncludeInactive) {
			continue
		}
		found := existing
		found.EncryptedValue = ""
		result = append(result, &found)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (r *memorySecretRepository) ListDueForRotation(
	_ context.Context,
	now time.Time,
) ([]*secretsDomain.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*secretsDomain.Secret
	for _, existing := range r.secrets {
		if existing.IsRotationDue(now) {
			found := existing
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memorySecretRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.secrets)
}

type memoryRotationRepository struct {
	mu        sync.Mutex
	rotations []secretsDomain.SecretRotation
	// afterCreate, when set, runs once a rotation record is stored. Tests use it
	// to interleave other operations with an in-flight rotation.
	afterCreate func()
}

func (r *memoryRotationRepository) Create(_ context.Context, rotation *secretsDomain.SecretRotation) error {
	r.mu.Lock()
	r.rotations = append(r.rotations, *rotation)
	hook := r.afterCreate
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (r *memoryRotationRepository) Update(_ context.Context, rotation *secretsDomain.SecretRotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rotations {
		if r.rotations[i].ID == rotation.ID {
			r.rotations[i] = *rotation
			return nil
		}
	}
	return secretsDomain.ErrRotationNotFound
}

func (r *memoryRotationRepository) ListBySecret(
	_ context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*secretsDomain.SecretRotation
	for i := len(r.rotations) - 1; i >= 0 && len(result) < limit; i-- {
		if r.rotations[i].SecretID == secretID {
			found := r.rotations[i]
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memoryRotationRepository) byStatus(status secretsDomain.RotationStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rotation := range r.rotations {
		if rotation.Status == status {
			n++
		}
	}
	return n
}

// recordingAuditTrail keeps every logged entry.
type recordingAuditTrail struct {
	mu      sync.Mutex
	entries []auditDomain.SecretAccess
}

func (r *recordingAuditTrail) LogAccess(_ context.Context, access *auditDomain.SecretAccess) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *access)
}

func (r *recordingAuditTrail) GetAuditTrail(
	_ context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*auditDomain.SecretAccess
	for i := range r.entries {
		if r.entries[i].SecretID != nil && *r.entries[i].SecretID == secretID && len(result) < limit {
			found := r.entries[i]
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *recordingAuditTrail) all() []auditDomain.SecretAccess {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auditDomain.SecretAccess(nil), r.entries...)
}

// passthroughTxManager runs fn on the caller's context.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
