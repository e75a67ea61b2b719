package app

import (
	"fmt"

	auditRepository "github.com/allisson/orgvault/internal/audit/repository"
	auditUseCase "github.com/allisson/orgvault/internal/audit/usecase"
	"github.com/allisson/orgvault/internal/database"
)

type auditDeps struct {
	secretAccessRepository lazy[auditUseCase.SecretAccessRepository]
	auditTrail             lazy[auditUseCase.AuditTrail]
}

// SecretAccessRepository returns the audit sink for the configured driver.
func (c *Container) SecretAccessRepository() (auditUseCase.SecretAccessRepository, error) {
	return c.secretAccessRepository.get(func() (auditUseCase.SecretAccessRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret access repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverPostgres:
			return auditRepository.NewPostgreSQLSecretAccessRepository(db), nil
		case database.DriverMySQL:
			return auditRepository.NewMySQLSecretAccessRepository(db), nil
		default:
			return nil, unsupportedDriver(c.config.DBDriver)
		}
	})
}

// AuditTrail returns the audit trail shared by every use case.
func (c *Container) AuditTrail() (auditUseCase.AuditTrail, error) {
	return c.auditTrail.get(func() (auditUseCase.AuditTrail, error) {
		repo, err := c.SecretAccessRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get secret access repository for audit trail: %w", err)
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit trail: %w", err)
		}
		return auditUseCase.NewAuditTrail(repo, businessMetrics, c.Logger()), nil
	})
}
