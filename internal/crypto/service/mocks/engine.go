// Package mocks provides mock implementations of the crypto services for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoService "github.com/allisson/orgvault/internal/crypto/service"
)

// MockEngine is a mock implementation of Engine.
type MockEngine struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method of Engine.
func (m *MockEngine) Encrypt(
	ctx context.Context,
	plaintext []byte,
	secretID string,
	keyVersion uint,
) (*cryptoService.EncryptedValue, error) {
	args := m.Called(ctx, plaintext, secretID, keyVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoService.EncryptedValue), args.Error(1)
}

// Decrypt mocks the Decrypt method of Engine.
func (m *MockEngine) Decrypt(ctx context.Context, input cryptoService.DecryptInput) ([]byte, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
