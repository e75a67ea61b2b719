package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	cryptoHTTP "github.com/allisson/orgvault/internal/crypto/http"
	cryptoService "github.com/allisson/orgvault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/orgvault/internal/crypto/usecase"
)

type cryptoDeps struct {
	kmsService       lazy[cryptoService.KMSService]
	keyring          lazy[*cryptoDomain.Keyring]
	engine           lazy[cryptoService.Engine]
	masterKeyUseCase lazy[cryptoUseCase.MasterKeyUseCase]
	masterKeyHandler lazy[*cryptoHTTP.MasterKeyHandler]
}

// KMSService returns the KMS service used to unwrap configured master keys.
func (c *Container) KMSService() cryptoService.KMSService {
	service, _ := c.kmsService.get(func() (cryptoService.KMSService, error) {
		return cryptoService.NewKMSService(), nil
	})
	return service
}

// Keyring returns the process keyring loaded from MASTER_KEY and
// PREVIOUS_MASTER_KEYS. An error here is a configuration error.
func (c *Container) Keyring() (*cryptoDomain.Keyring, error) {
	return c.keyring.get(func() (*cryptoDomain.Keyring, error) {
		keyring, err := cryptoService.LoadKeyring(context.Background(), cryptoService.KeyringConfig{
			MasterKey:          c.config.MasterKey,
			PreviousMasterKeys: c.config.PreviousMasterKeys,
			KMSKeyURI:          c.config.KMSKeyURI,
			MaxKeys:            c.config.KeyringMaxKeys,
		}, c.KMSService())
		if err != nil {
			return nil, fmt.Errorf("failed to load keyring: %w", err)
		}

		current, _ := keyring.CurrentKey()
		c.Logger().Info("keyring loaded",
			slog.String("current_key_id", current.ID),
			slog.Int("key_count", keyring.Len()),
			slog.Bool("kms", c.config.KMSKeyURI != ""),
		)
		return keyring, nil
	})
}

// Engine returns the encryption engine bound to the keyring.
func (c *Container) Engine() (cryptoService.Engine, error) {
	return c.engine.get(func() (cryptoService.Engine, error) {
		keyring, err := c.Keyring()
		if err != nil {
			return nil, err
		}
		return cryptoService.NewEngine(keyring, cryptoService.NewKeyDeriver()), nil
	})
}

// MasterKeyUseCase returns the keyring administration use case.
func (c *Container) MasterKeyUseCase() (cryptoUseCase.MasterKeyUseCase, error) {
	return c.masterKeyUseCase.get(func() (cryptoUseCase.MasterKeyUseCase, error) {
		keyring, err := c.Keyring()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for master key use case: %w", err)
		}

		useCase := cryptoUseCase.NewMasterKeyUseCase(keyring, c.Logger())
		return cryptoUseCase.NewMasterKeyUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// MasterKeyHandler returns the HTTP handler for keyring administration.
func (c *Container) MasterKeyHandler() (*cryptoHTTP.MasterKeyHandler, error) {
	return c.masterKeyHandler.get(func() (*cryptoHTTP.MasterKeyHandler, error) {
		useCase, err := c.MasterKeyUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get master key use case for master key handler: %w", err)
		}
		return cryptoHTTP.NewMasterKeyHandler(useCase, c.Logger()), nil
	})
}
