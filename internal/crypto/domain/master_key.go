// Package domain defines the cryptographic domain models of the vault.
//
// Master keys are held in process memory only, inside a Keyring. Each secret is
// encrypted with a per-secret key derived from the current master key, and the
// resulting envelope records which master key was used so that rotated-out keys
// keep older ciphertexts readable.
package domain

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// MinMasterKeySize is the minimum accepted master key length in bytes.
	MinMasterKeySize = 32

	// MasterKeyIDSize is the number of raw fingerprint bytes used as a key id.
	// Its hex form is the string id exposed by the keyring.
	MasterKeyIDSize = 8
)

// MasterKey is a symmetric root key owned by the Keyring.
//
// ID and KeyHash are both derived from the key bytes, so the same material always
// maps to the same identity and duplicate additions can be detected.
type MasterKey struct {
	ID        string    // hex of the first MasterKeyIDSize bytes of SHA-256(Key)
	Key       []byte    // raw key material, never persisted
	KeyHash   string    // hex SHA-256(Key), stored with each secret
	CreatedAt time.Time // when the key entered the keyring
	IsActive  bool      // true only for the current key
}

// NewMasterKey copies raw into a new MasterKey. The caller keeps ownership of raw
// and may zero it afterwards.
func NewMasterKey(raw []byte, createdAt time.Time) (*MasterKey, error) {
	if len(raw) < MinMasterKeySize {
		return nil, ErrMasterKeyTooShort
	}

	key := make([]byte, len(raw))
	copy(key, raw)

	return &MasterKey{
		ID:        MasterKeyID(key),
		Key:       key,
		KeyHash:   MasterKeyHash(key),
		CreatedAt: createdAt.UTC(),
	}, nil
}

// IDBytes returns the raw fingerprint bytes embedded in envelopes.
func (m *MasterKey) IDBytes() []byte {
	sum := sha256.Sum256(m.Key)
	out := make([]byte, MasterKeyIDSize)
	copy(out, sum[:MasterKeyIDSize])
	return out
}

// MasterKeyHash returns the hex SHA-256 fingerprint of key material.
func MasterKeyHash(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// MasterKeyID returns the truncated fingerprint used as the key id.
func MasterKeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:MasterKeyIDSize])
}

// DecodeMasterKey decodes one base64 (standard encoding) master key value.
func DecodeMasterKey(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}
	return raw, nil
}

// SplitMasterKeys splits a comma-separated list of encoded keys, skipping blanks.
func SplitMasterKeys(list string) []string {
	var out []string
	for part := range strings.SplitSeq(list, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Zero overwrites a byte slice with zeros to clear key material from memory.
func Zero(b []byte) {
	clear(b)
}

// KMSKeeper wraps and unwraps master key material with an external KMS.
// *secrets.Keeper from gocloud.dev satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
