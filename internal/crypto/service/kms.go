package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"

	// KMS provider drivers selected by key URI scheme.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService wraps master key material with an external KMS so that configured
// keys never sit in plaintext in the environment.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI. Supported schemes: gcpkms://,
	// awskms://, azurekeyvault://, hashivault:// and base64key://.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

	// WrapMasterKey encrypts raw key material and returns it base64 encoded, in the
	// form accepted by MASTER_KEY when KMS_KEY_URI is set.
	WrapMasterKey(ctx context.Context, keeper cryptoDomain.KMSKeeper, raw []byte) (string, error)

	// UnwrapMasterKey reverses WrapMasterKey.
	UnwrapMasterKey(ctx context.Context, keeper cryptoDomain.KMSKeeper, encoded string) ([]byte, error)
}

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

func (k *kmsService) WrapMasterKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	raw []byte,
) (string, error) {
	ciphertext, err := keeper.Encrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to wrap master key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (k *kmsService) UnwrapMasterKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	encoded string,
) ([]byte, error) {
	ciphertext, err := cryptoDomain.DecodeMasterKey(encoded)
	if err != nil {
		return nil, err
	}
	raw, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMasterKeyUnwrapFailed, err)
	}
	return raw, nil
}
