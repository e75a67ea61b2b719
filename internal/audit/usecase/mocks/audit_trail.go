// Package mocks provides mock implementations of the audit use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
)

// MockAuditTrail is a mock implementation of AuditTrail.
type MockAuditTrail struct {
	mock.Mock
}

// LogAccess mocks the LogAccess method of AuditTrail.
func (m *MockAuditTrail) LogAccess(ctx context.Context, access *auditDomain.SecretAccess) {
	m.Called(ctx, access)
}

// GetAuditTrail mocks the GetAuditTrail method of AuditTrail.
func (m *MockAuditTrail) GetAuditTrail(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	args := m.Called(ctx, secretID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.SecretAccess), args.Error(1)
}

// MockSecretAccessRepository is a mock implementation of SecretAccessRepository.
type MockSecretAccessRepository struct {
	mock.Mock
}

// Create mocks the Create method of SecretAccessRepository.
func (m *MockSecretAccessRepository) Create(ctx context.Context, access *auditDomain.SecretAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

// ListBySecret mocks the ListBySecret method of SecretAccessRepository.
func (m *MockSecretAccessRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	args := m.Called(ctx, secretID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.SecretAccess), args.Error(1)
}
