package app

import (
	"fmt"

	"github.com/allisson/orgvault/internal/database"
	tokensHTTP "github.com/allisson/orgvault/internal/tokens/http"
	tokensRepository "github.com/allisson/orgvault/internal/tokens/repository"
	tokensService "github.com/allisson/orgvault/internal/tokens/service"
	tokensUseCase "github.com/allisson/orgvault/internal/tokens/usecase"
)

type tokensDeps struct {
	tokenRepository lazy[tokensUseCase.TokenRepository]
	tokenUseCase    lazy[tokensUseCase.TokenUseCase]
	tokenHandler    lazy[*tokensHTTP.TokenHandler]
}

// TokenRepository returns the access token repository for the configured driver.
func (c *Container) TokenRepository() (tokensUseCase.TokenRepository, error) {
	return c.tokenRepository.get(func() (tokensUseCase.TokenRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for token repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverPostgres:
			return tokensRepository.NewPostgreSQLTokenRepository(db), nil
		case database.DriverMySQL:
			return tokensRepository.NewMySQLTokenRepository(db), nil
		default:
			return nil, unsupportedDriver(c.config.DBDriver)
		}
	})
}

// TokenUseCase returns the access token use case wrapped with metrics.
func (c *Container) TokenUseCase() (tokensUseCase.TokenUseCase, error) {
	return c.tokenUseCase.get(func() (tokensUseCase.TokenUseCase, error) {
		tokenRepository, err := c.TokenRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
		}
		auditTrail, err := c.AuditTrail()
		if err != nil {
			return nil, fmt.Errorf("failed to get audit trail for token use case: %w", err)
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}

		useCase := tokensUseCase.NewTokenUseCase(
			tokenRepository,
			tokensService.NewTokenService(),
			auditTrail,
			c.Logger(),
		)
		return tokensUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// TokenHandler returns the HTTP handler for token and service-access endpoints.
func (c *Container) TokenHandler() (*tokensHTTP.TokenHandler, error) {
	return c.tokenHandler.get(func() (*tokensHTTP.TokenHandler, error) {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		secretUseCase, err := c.SecretUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get secret use case for token handler: %w", err)
		}
		auditTrail, err := c.AuditTrail()
		if err != nil {
			return nil, fmt.Errorf("failed to get audit trail for token handler: %w", err)
		}
		return tokensHTTP.NewTokenHandler(tokenUseCase, secretUseCase, auditTrail, c.Logger()), nil
	})
}
