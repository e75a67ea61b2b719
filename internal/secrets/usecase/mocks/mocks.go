// Package mocks provides mock implementations of the secrets use case layer for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// MockSecretRepository is a mock implementation of SecretRepository.
type MockSecretRepository struct {
	mock.Mock
}

// Create mocks the Create method of SecretRepository.
func (m *MockSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

// Update mocks the Update method of SecretRepository.
func (m *MockSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret, expectedVersion uint) error {
	args := m.Called(ctx, secret, expectedVersion)
	return args.Error(0)
}

// UpdateSchedule mocks the UpdateSchedule method of SecretRepository.
func (m *MockSecretRepository) UpdateSchedule(
	ctx context.Context,
	secretID uuid.UUID,
	nextRotationAt *time.Time,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, secretID, nextRotationAt, updatedAt)
	return args.Error(0)
}

// Delete mocks the Delete method of SecretRepository.
func (m *MockSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) (bool, error) {
	args := m.Called(ctx, secretID)
	return args.Bool(0), args.Error(1)
}

// GetByID mocks the GetByID method of SecretRepository.
func (m *MockSecretRepository) GetByID(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// GetByIDForUpdate mocks the GetByIDForUpdate method of SecretRepository.
func (m *MockSecretRepository) GetByIDForUpdate(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// GetByKey mocks the GetByKey method of SecretRepository.
func (m *MockSecretRepository) GetByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, organizationID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// List mocks the List method of SecretRepository.
func (m *MockSecretRepository) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.Secret), args.Error(1)
}

// ListDueForRotation mocks the ListDueForRotation method of SecretRepository.
func (m *MockSecretRepository) ListDueForRotation(ctx context.Context, now time.Time) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.Secret), args.Error(1)
}

// MockRotationRepository is a mock implementation of RotationRepository.
type MockRotationRepository struct {
	mock.Mock
}

// Create mocks the Create method of RotationRepository.
func (m *MockRotationRepository) Create(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	args := m.Called(ctx, rotation)
	return args.Error(0)
}

// Update mocks the Update method of RotationRepository.
func (m *MockRotationRepository) Update(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	args := m.Called(ctx, rotation)
	return args.Error(0)
}

// ListBySecret mocks the ListBySecret method of RotationRepository.
func (m *MockRotationRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	args := m.Called(ctx, secretID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.SecretRotation), args.Error(1)
}

// MockSecretUseCase is a mock implementation of SecretUseCase.
type MockSecretUseCase struct {
	mock.Mock
}

// Create mocks the Create method of SecretUseCase.
func (m *MockSecretUseCase) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, input, actorID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// GetValue mocks the GetValue method of SecretUseCase.
func (m *MockSecretUseCase) GetValue(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	args := m.Called(ctx, secretID, actorID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// GetValueByKey mocks the GetValueByKey method of SecretUseCase.
func (m *MockSecretUseCase) GetValueByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	args := m.Called(ctx, organizationID, key, actorID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Update mocks the Update method of SecretUseCase.
func (m *MockSecretUseCase) Update(
	ctx context.Context,
	secretID uuid.UUID,
	newValue []byte,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.RotationResult, error) {
	args := m.Called(ctx, secretID, newValue, actorID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.RotationResult), args.Error(1)
}

// Deactivate mocks the Deactivate method of SecretUseCase.
func (m *MockSecretUseCase) Deactivate(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) error {
	args := m.Called(ctx, secretID, actorID, reqCtx)
	return args.Error(0)
}

// Delete mocks the Delete method of SecretUseCase.
func (m *MockSecretUseCase) Delete(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	args := m.Called(ctx, secretID, actorID, reqCtx)
	return args.Bool(0), args.Error(1)
}

// List mocks the List method of SecretUseCase.
func (m *MockSecretUseCase) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.Secret), args.Error(1)
}

// ListRotations mocks the ListRotations method of SecretUseCase.
func (m *MockSecretUseCase) ListRotations(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	args := m.Called(ctx, secretID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.SecretRotation), args.Error(1)
}

// ProcessScheduledRotations mocks the ProcessScheduledRotations method of SecretUseCase.
func (m *MockSecretUseCase) ProcessScheduledRotations(
	ctx context.Context,
) (*secretsDomain.ScheduledRotationResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.ScheduledRotationResult), args.Error(1)
}
