// Package mocks provides testify mocks for the crypto use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMasterKeyUseCase is a mock implementation of usecase.MasterKeyUseCase.
type MockMasterKeyUseCase struct {
	mock.Mock
}

func (m *MockMasterKeyUseCase) AddMasterKey(ctx context.Context, raw []byte, rotatedBy string) (string, error) {
	args := m.Called(ctx, raw, rotatedBy)
	return args.String(0), args.Error(1)
}
