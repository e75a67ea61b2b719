// Package mocks provides mock implementations of the token use case layer for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// Create mocks the Create method of TokenRepository.
func (m *MockTokenRepository) Create(ctx context.Context, token *tokensDomain.SecretToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// GetByID mocks the GetByID method of TokenRepository.
func (m *MockTokenRepository) GetByID(ctx context.Context, tokenID uuid.UUID) (*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.SecretToken), args.Error(1)
}

// ListByLookupPrefix mocks the ListByLookupPrefix method of TokenRepository.
func (m *MockTokenRepository) ListByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
) ([]*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, lookupPrefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokensDomain.SecretToken), args.Error(1)
}

// ListLiveByLookupPrefix mocks the ListLiveByLookupPrefix method of TokenRepository.
func (m *MockTokenRepository) ListLiveByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
	now time.Time,
) ([]*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, lookupPrefix, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokensDomain.SecretToken), args.Error(1)
}

// ListByOrganization mocks the ListByOrganization method of TokenRepository.
func (m *MockTokenRepository) ListByOrganization(
	ctx context.Context,
	organizationID uuid.UUID,
) ([]*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokensDomain.SecretToken), args.Error(1)
}

// IncrementUsage mocks the IncrementUsage method of TokenRepository.
func (m *MockTokenRepository) IncrementUsage(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Bool(0), args.Error(1)
}

// Revoke mocks the Revoke method of TokenRepository.
func (m *MockTokenRepository) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) error {
	args := m.Called(ctx, tokenID, revokedBy, revokedAt)
	return args.Error(0)
}

// DeleteExpired mocks the DeleteExpired method of TokenRepository.
func (m *MockTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// CountExpired mocks the CountExpired method of TokenRepository.
func (m *MockTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenService is a mock implementation of TokenService.
type MockTokenService struct {
	mock.Mock
}

// Generate mocks the Generate method of TokenService.
func (m *MockTokenService) Generate() (string, string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.String(2), args.Error(3)
}

// Verify mocks the Verify method of TokenService.
func (m *MockTokenService) Verify(plainToken, tokenHash string) bool {
	args := m.Called(plainToken, tokenHash)
	return args.Bool(0)
}

// LookupPrefix mocks the LookupPrefix method of TokenService.
func (m *MockTokenService) LookupPrefix(plainToken string) (string, bool) {
	args := m.Called(plainToken)
	return args.String(0), args.Bool(1)
}

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method of TokenUseCase.
func (m *MockTokenUseCase) Generate(
	ctx context.Context,
	input *tokensDomain.GenerateTokenInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.GenerateTokenOutput, error) {
	args := m.Called(ctx, input, actorID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.GenerateTokenOutput), args.Error(1)
}

// Validate mocks the Validate method of TokenUseCase.
func (m *MockTokenUseCase) Validate(
	ctx context.Context,
	plainToken string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, plainToken, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.SecretToken), args.Error(1)
}

// Revoke mocks the Revoke method of TokenUseCase.
func (m *MockTokenUseCase) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	args := m.Called(ctx, tokenID, revokedBy, reqCtx)
	return args.Bool(0), args.Error(1)
}

// List mocks the List method of TokenUseCase.
func (m *MockTokenUseCase) List(ctx context.Context, organizationID uuid.UUID) ([]*tokensDomain.SecretToken, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokensDomain.SecretToken), args.Error(1)
}

// CleanupExpired mocks the CleanupExpired method of TokenUseCase.
func (m *MockTokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
