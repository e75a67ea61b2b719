package service

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

// derivedKeySize is the length of every per-secret key (AES-256).
const derivedKeySize = 32

type hkdfKeyDeriver struct{}

// NewKeyDeriver creates an HKDF-SHA256 key deriver.
//
// salt = SHA-256(secretID || keyVersion || "salt")
// info = "secret:" || secretID || ":v" || keyVersion
//
// Binding the secret id into both inputs means a derived key leaked for one
// secret cannot open another secret under the same master key.
func NewKeyDeriver() KeyDeriver {
	return &hkdfKeyDeriver{}
}

// DeriveSecretKey implements KeyDeriver.
func (h *hkdfKeyDeriver) DeriveSecretKey(masterKey []byte, secretID string, keyVersion uint) ([]byte, error) {
	version := strconv.FormatUint(uint64(keyVersion), 10)

	salt := sha256.Sum256([]byte(secretID + version + "salt"))
	info := []byte("secret:" + secretID + ":v" + version)

	reader := hkdf.New(sha256.New, masterKey, salt[:], info)
	key := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive secret key: %w", err)
	}
	return key, nil
}
