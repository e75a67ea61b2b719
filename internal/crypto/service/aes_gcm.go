package service

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
)

// aesGCM wraps AES-256-GCM with the envelope's detached tag layout.
//
// The standard library appends the 16-byte tag to the ciphertext; the envelope
// stores it in front of the ciphertext instead, so seal and open split and
// rejoin it.
type aesGCM struct {
	aead cipher.AEAD
}

// newAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func newAESGCM(key []byte) (*aesGCM, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, cryptoDomain.TagSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &aesGCM{aead: aead}, nil
}

// seal encrypts plaintext with the given iv and aad and returns tag and ciphertext
// separately.
func (a *aesGCM) seal(plaintext, iv, aad []byte) (tag, ciphertext []byte) {
	sealed := a.aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - cryptoDomain.TagSize
	return sealed[split:], sealed[:split]
}

// open verifies the tag and decrypts ciphertext.
func (a *aesGCM) open(ciphertext, tag, iv, aad []byte) ([]byte, error) {
	if len(iv) != a.aead.NonceSize() {
		return nil, errors.New("invalid iv size")
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
