// Package service provides the cryptographic services of the vault: per-secret key
// derivation, AES-256-GCM envelope encryption and KMS unwrapping of master keys.
package service

import "context"

// KeyDeriver derives per-secret encryption keys from a master key.
type KeyDeriver interface {
	// DeriveSecretKey returns a 32-byte key bound to secretID and keyVersion.
	// The same inputs always produce the same key.
	DeriveSecretKey(masterKey []byte, secretID string, keyVersion uint) ([]byte, error)
}

// EncryptedValue is the result of encrypting one secret value. All fields are
// persisted with the secret so the value can be decrypted later.
type EncryptedValue struct {
	Envelope    string // base64 envelope
	KeyHash     string // hash of the master key used
	KeyVersion  uint   // version fed into key derivation
	MasterKeyID string // id of the master key used
}

// DecryptInput carries everything needed to open a stored envelope.
type DecryptInput struct {
	Envelope   string
	KeyHash    string
	SecretID   string
	KeyVersion uint
	// MasterKeyIDHint is used for legacy envelopes that carry no key id.
	MasterKeyIDHint string
}

// Engine encrypts and decrypts single secret values.
type Engine interface {
	// Encrypt seals plaintext with a key derived from the current master key.
	Encrypt(ctx context.Context, plaintext []byte, secretID string, keyVersion uint) (*EncryptedValue, error)

	// Decrypt opens an envelope. Every failure is reported as ErrDecryptionFailed.
	Decrypt(ctx context.Context, input DecryptInput) ([]byte, error)
}
