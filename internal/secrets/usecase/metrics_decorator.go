package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	"github.com/allisson/orgvault/internal/metrics"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

const metricsDomain = "secrets"

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Create(ctx, input, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_create", start, err)
	return secret, err
}

func (s *secretUseCaseWithMetrics) GetValue(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	start := time.Now()
	value, err := s.next.GetValue(ctx, secretID, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_get", start, err)
	return value, err
}

func (s *secretUseCaseWithMetrics) GetValueByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
	actorID string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	start := time.Now()
	value, err := s.next.GetValueByKey(ctx, organizationID, key, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_get_by_key", start, err)
	return value, err
}

func (s *secretUseCaseWithMetrics) Update(
	ctx context.Context,
	secretID uuid.UUID,
	newValue []byte,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*secretsDomain.RotationResult, error) {
	start := time.Now()
	result, err := s.next.Update(ctx, secretID, newValue, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_rotate", start, err)
	return result, err
}

func (s *secretUseCaseWithMetrics) Deactivate(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) error {
	start := time.Now()
	err := s.next.Deactivate(ctx, secretID, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_deactivate", start, err)
	return err
}

func (s *secretUseCaseWithMetrics) Delete(
	ctx context.Context,
	secretID uuid.UUID,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	start := time.Now()
	deleted, err := s.next.Delete(ctx, secretID, actorID, reqCtx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_delete", start, err)
	return deleted, err
}

func (s *secretUseCaseWithMetrics) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	start := time.Now()
	secrets, err := s.next.List(ctx, organizationID, filter)
	metrics.Observe(ctx, s.metrics, metricsDomain, "secret_list", start, err)
	return secrets, err
}

func (s *secretUseCaseWithMetrics) ListRotations(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	start := time.Now()
	rotations, err := s.next.ListRotations(ctx, secretID, limit)
	metrics.Observe(ctx, s.metrics, metricsDomain, "rotation_list", start, err)
	return rotations, err
}

func (s *secretUseCaseWithMetrics) ProcessScheduledRotations(
	ctx context.Context,
) (*secretsDomain.ScheduledRotationResult, error) {
	start := time.Now()
	result, err := s.next.ProcessScheduledRotations(ctx)
	metrics.Observe(ctx, s.metrics, metricsDomain, "rotation_schedule", start, err)
	return result, err
}
