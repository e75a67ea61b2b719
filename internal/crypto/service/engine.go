package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
)

// encryptionEngine implements Engine on top of the keyring and key deriver.
type encryptionEngine struct {
	keyring *cryptoDomain.Keyring
	deriver KeyDeriver
	random  io.Reader
}

// NewEngine creates an AES-256-GCM encryption engine bound to keyring.
func NewEngine(keyring *cryptoDomain.Keyring, deriver KeyDeriver) Engine {
	return &encryptionEngine{
		keyring: keyring,
		deriver: deriver,
		random:  rand.Reader,
	}
}

// Encrypt implements Engine.
//
// A random salt and iv are generated per call. The salt is authenticated as
// additional data, and the envelope embeds the current master key id.
func (e *encryptionEngine) Encrypt(
	ctx context.Context,
	plaintext []byte,
	secretID string,
	keyVersion uint,
) (*EncryptedValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// One snapshot read: the key used below is the key recorded in the envelope.
	masterKey, err := e.keyring.CurrentKey()
	if err != nil {
		return nil, err
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := io.ReadFull(e.random, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := io.ReadFull(e.random, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	secretKey, err := e.deriver.DeriveSecretKey(masterKey.Key, secretID, keyVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(secretKey)

	aead, err := newAESGCM(secretKey)
	if err != nil {
		return nil, err
	}
	tag, ciphertext := aead.seal(plaintext, iv, salt)

	envelope := &cryptoDomain.Envelope{
		MasterKeyID: masterKey.IDBytes(),
		Salt:        salt,
		IV:          iv,
		Tag:         tag,
		Ciphertext:  ciphertext,
	}

	return &EncryptedValue{
		Envelope:    envelope.Encode(),
		KeyHash:     masterKey.KeyHash,
		KeyVersion:  keyVersion,
		MasterKeyID: masterKey.ID,
	}, nil
}

// Decrypt implements Engine.
//
// Key resolution order: the id embedded in the envelope (or the hint for legacy
// envelopes), then the current key. When the resolved key's hash differs from
// the recorded KeyHash, the keyring is scanned by hash.
func (e *encryptionEngine) Decrypt(ctx context.Context, input DecryptInput) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := cryptoDomain.DecodeEnvelope(input.Envelope)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	if envelope, ok := cryptoDomain.ParseEnvelopeV1(raw); ok {
		plaintext, err := e.open(envelope, hex.EncodeToString(envelope.MasterKeyID), input)
		if err == nil {
			return plaintext, nil
		}
		// A legacy salt may start with the v1 marker byte; fall through.
	}

	envelope, ok := cryptoDomain.ParseEnvelopeLegacy(raw)
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := e.open(envelope, input.MasterKeyIDHint, input)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

func (e *encryptionEngine) open(
	envelope *cryptoDomain.Envelope,
	masterKeyID string,
	input DecryptInput,
) ([]byte, error) {
	masterKey, err := e.resolveKey(masterKeyID, input.KeyHash)
	if err != nil {
		return nil, err
	}

	secretKey, err := e.deriver.DeriveSecretKey(masterKey.Key, input.SecretID, input.KeyVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(secretKey)

	aead, err := newAESGCM(secretKey)
	if err != nil {
		return nil, err
	}
	return aead.open(envelope.Ciphertext, envelope.Tag, envelope.IV, envelope.Salt)
}

func (e *encryptionEngine) resolveKey(masterKeyID, keyHash string) (*cryptoDomain.MasterKey, error) {
	var masterKey *cryptoDomain.MasterKey
	if masterKeyID != "" {
		if key, err := e.keyring.KeyByID(masterKeyID); err == nil {
			masterKey = key
		}
	}
	if masterKey == nil {
		current, err := e.keyring.CurrentKey()
		if err != nil {
			return nil, err
		}
		masterKey = current
	}

	if keyHash != "" && masterKey.KeyHash != keyHash {
		if byHash, err := e.keyring.KeyByHash(keyHash); err == nil {
			masterKey = byHash
		}
	}
	return masterKey, nil
}
