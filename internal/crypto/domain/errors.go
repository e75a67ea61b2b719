package domain

import (
	"github.com/allisson/orgvault/internal/errors"
)

// Keyring and encryption error definitions.
//
// Configuration errors are fatal at startup. Everything else is recovered by the
// use cases into a typed result and never carries cryptographic internals.
var (
	// ErrMasterKeyNotSet indicates no master key was supplied to the process.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrConfiguration, "MASTER_KEY is not set")

	// ErrMasterKeyTooShort indicates master key material shorter than MinMasterKeySize.
	ErrMasterKeyTooShort = errors.Wrap(errors.ErrInvalidInput, "master key must be at least 32 bytes")

	// ErrInvalidMasterKeyBase64 indicates configured key material is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrConfiguration, "invalid master key base64 encoding")

	// ErrMasterKeyUnwrapFailed indicates the KMS could not decrypt a configured key.
	ErrMasterKeyUnwrapFailed = errors.Wrap(errors.ErrConfiguration, "failed to unwrap master key")

	// ErrMasterKeyAlreadyExists indicates the key material is already in the keyring.
	ErrMasterKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "master key already exists")

	// ErrMasterKeyNotFound indicates no key in the keyring has the requested id or hash.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")

	// ErrNoCurrentMasterKey indicates the keyring is empty.
	ErrNoCurrentMasterKey = errors.Wrap(errors.ErrConfiguration, "no current master key")

	// ErrKeyringFull indicates the retention cap was reached. Keys are never evicted
	// because older envelopes would become undecryptable.
	ErrKeyringFull = errors.Wrap(errors.ErrConflict, "keyring retention limit reached")

	// ErrDecryptionFailed indicates an envelope could not be opened.
	//
	// This covers malformed base64, truncated envelopes, unknown keys and
	// authentication tag mismatches. The cause is never disclosed; HTTP callers
	// see a generic internal error.
	ErrDecryptionFailed = errors.New("decryption failed")
)
