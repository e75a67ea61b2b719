package app

import (
	"fmt"

	"github.com/allisson/orgvault/internal/database"
	"github.com/allisson/orgvault/internal/scheduler"
	secretsHTTP "github.com/allisson/orgvault/internal/secrets/http"
	secretsRepository "github.com/allisson/orgvault/internal/secrets/repository"
	secretsUseCase "github.com/allisson/orgvault/internal/secrets/usecase"
)

type secretsDeps struct {
	secretRepository   lazy[secretsUseCase.SecretRepository]
	rotationRepository lazy[secretsUseCase.RotationRepository]
	secretUseCase      lazy[secretsUseCase.SecretUseCase]
	secretHandler      lazy[*secretsHTTP.SecretHandler]
	rotationScheduler  lazy[*scheduler.RotationScheduler]
}

// SecretRepository returns the secret repository for the configured driver.
func (c *Container) SecretRepository() (secretsUseCase.SecretRepository, error) {
	return c.secretRepository.get(func() (secretsUseCase.SecretRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverPostgres:
			return secretsRepository.NewPostgreSQLSecretRepository(db), nil
		case database.DriverMySQL:
			return secretsRepository.NewMySQLSecretRepository(db), nil
		default:
			return nil, unsupportedDriver(c.config.DBDriver)
		}
	})
}

// RotationRepository returns the rotation history repository for the configured driver.
func (c *Container) RotationRepository() (secretsUseCase.RotationRepository, error) {
	return c.rotationRepository.get(func() (secretsUseCase.RotationRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for rotation repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverPostgres:
			return secretsRepository.NewPostgreSQLRotationRepository(db), nil
		case database.DriverMySQL:
			return secretsRepository.NewMySQLRotationRepository(db), nil
		default:
			return nil, unsupportedDriver(c.config.DBDriver)
		}
	})
}

// SecretUseCase returns the secret lifecycle use case wrapped with metrics.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	return c.secretUseCase.get(c.initSecretUseCase)
}

// SecretHandler returns the HTTP handler for secret management operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	return c.secretHandler.get(func() (*secretsHTTP.SecretHandler, error) {
		secretUseCase, err := c.SecretUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get secret use case for secret handler: %w", err)
		}
		auditTrail, err := c.AuditTrail()
		if err != nil {
			return nil, fmt.Errorf("failed to get audit trail for secret handler: %w", err)
		}
		return secretsHTTP.NewSecretHandler(secretUseCase, auditTrail, c.Logger()), nil
	})
}

// RotationScheduler returns the scheduler driving ProcessScheduledRotations.
func (c *Container) RotationScheduler() (*scheduler.RotationScheduler, error) {
	return c.rotationScheduler.get(func() (*scheduler.RotationScheduler, error) {
		secretUseCase, err := c.SecretUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get secret use case for rotation scheduler: %w", err)
		}
		return scheduler.NewRotationScheduler(secretUseCase, c.config.RotationSchedule, c.Logger())
	})
}

func (c *Container) initSecretUseCase() (secretsUseCase.SecretUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for secret use case: %w", err)
	}
	secretRepository, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for secret use case: %w", err)
	}
	rotationRepository, err := c.RotationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation repository for secret use case: %w", err)
	}
	engine, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption engine for secret use case: %w", err)
	}
	auditTrail, err := c.AuditTrail()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for secret use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
	}

	useCase := secretsUseCase.NewSecretUseCase(
		txManager,
		secretRepository,
		rotationRepository,
		engine,
		auditTrail,
		c.Logger(),
	)
	return secretsUseCase.NewSecretUseCaseWithMetrics(useCase, businessMetrics), nil
}
