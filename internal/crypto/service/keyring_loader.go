package service

import (
	"context"
	"strings"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	apperrors "github.com/allisson/orgvault/internal/errors"
)

// KeyringConfig carries the master key settings read from the environment.
type KeyringConfig struct {
	// MasterKey is the base64 encoded current master key.
	MasterKey string
	// PreviousMasterKeys is a comma-separated list of base64 encoded retired keys,
	// oldest first. They are loaded for decryption only.
	PreviousMasterKeys string
	// KMSKeyURI, when set, means every configured key is KMS ciphertext.
	KMSKeyURI string
	// MaxKeys is the keyring retention cap.
	MaxKeys int
}

// LoadKeyring builds the process keyring from configuration. Previous keys are
// added first so the configured MasterKey ends up current.
//
// Any error returned here is a configuration error and must stop the process.
func LoadKeyring(ctx context.Context, cfg KeyringConfig, kms KMSService) (*cryptoDomain.Keyring, error) {
	if strings.TrimSpace(cfg.MasterKey) == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	decode := func(encoded string) ([]byte, error) {
		return cryptoDomain.DecodeMasterKey(encoded)
	}
	if cfg.KMSKeyURI != "" {
		keeper, err := kms.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = keeper.Close()
		}()
		decode = func(encoded string) ([]byte, error) {
			return kms.UnwrapMasterKey(ctx, keeper, encoded)
		}
	}

	current := strings.TrimSpace(cfg.MasterKey)
	var encoded []string
	for _, previous := range cryptoDomain.SplitMasterKeys(cfg.PreviousMasterKeys) {
		if previous != current {
			encoded = append(encoded, previous)
		}
	}
	encoded = append(encoded, current)

	keyring := cryptoDomain.NewKeyring(cfg.MaxKeys)
	for _, value := range encoded {
		raw, err := decode(value)
		if err != nil {
			keyring.Close()
			return nil, err
		}
		_, err = keyring.AddKey(raw)
		cryptoDomain.Zero(raw)
		if err != nil && !apperrors.Is(err, cryptoDomain.ErrMasterKeyAlreadyExists) {
			keyring.Close()
			return nil, err
		}
	}

	return keyring, nil
}
