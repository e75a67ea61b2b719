package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	"github.com/allisson/orgvault/internal/metrics"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

const metricsDomain = "tokens"

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) Generate(
	ctx context.Context,
	input *tokensDomain.GenerateTokenInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.GenerateTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Generate(ctx, input, actorID, reqCtx)
	metrics.Observe(ctx, t.metrics, metricsDomain, "token_generate", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Validate(
	ctx context.Context,
	plainToken string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.SecretToken, error) {
	start := time.Now()
	token, err := t.next.Validate(ctx, plainToken, reqCtx)
	metrics.Observe(ctx, t.metrics, metricsDomain, "token_validate", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	start := time.Now()
	revoked, err := t.next.Revoke(ctx, tokenID, revokedBy, reqCtx)
	metrics.Observe(ctx, t.metrics, metricsDomain, "token_revoke", start, err)
	return revoked, err
}

func (t *tokenUseCaseWithMetrics) List(
	ctx context.Context,
	organizationID uuid.UUID,
) ([]*tokensDomain.SecretToken, error) {
	start := time.Now()
	tokens, err := t.next.List(ctx, organizationID)
	metrics.Observe(ctx, t.metrics, metricsDomain, "token_list", start, err)
	return tokens, err
}

func (t *tokenUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanupExpired(ctx, days, dryRun)
	metrics.Observe(ctx, t.metrics, metricsDomain, "token_cleanup", start, err)
	return count, err
}
