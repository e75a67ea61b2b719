package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
)

// MockKMSService is a mock implementation of service.KMSService.
type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

func (m *MockKMSService) WrapMasterKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	raw []byte,
) (string, error) {
	args := m.Called(ctx, keeper, raw)
	return args.String(0), args.Error(1)
}

func (m *MockKMSService) UnwrapMasterKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	encoded string,
) ([]byte, error) {
	args := m.Called(ctx, keeper, encoded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockKMSKeeper is a mock implementation of domain.KMSKeeper.
type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}
