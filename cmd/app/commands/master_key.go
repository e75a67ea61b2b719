package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	cryptoService "github.com/allisson/orgvault/internal/crypto/service"
)

// RunCreateMasterKey generates a 32-byte master key and prints it in the form
// MASTER_KEY expects. With kmsKeyURI set, the key is wrapped by the KMS first and
// the printed value is the KMS ciphertext. Key material is zeroed before return.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	masterKey := make([]byte, cryptoDomain.MinMasterKeySize)
	defer cryptoDomain.Zero(masterKey)

	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	keyID := cryptoDomain.MasterKeyID(masterKey)

	if kmsKeyURI == "" {
		logger.Warn("master key printed in plaintext, set --kms-key-uri to wrap it with a KMS")
		_, err := fmt.Fprintf(writer,
			"# Master key id: %s\nMASTER_KEY=\"%s\"\n",
			keyID, base64.StdEncoding.EncodeToString(masterKey),
		)
		return err
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := kmsService.WrapMasterKey(ctx, keeper, masterKey)
	if err != nil {
		return err
	}

	logger.Info("master key created", slog.String("key_id", keyID))
	_, err = fmt.Fprintf(writer,
		"# Master key id: %s\nKMS_KEY_URI=\"%s\"\nMASTER_KEY=\"%s\"\n"+
			"# To rotate, move the current MASTER_KEY value to the end of PREVIOUS_MASTER_KEYS.\n",
		keyID, kmsKeyURI, wrapped,
	)
	return err
}
