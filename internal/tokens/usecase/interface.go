// Package usecase implements scoped service access tokens: issuing, validating,
// revoking and purging them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

// TokenRepository defines the interface for SecretToken persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *tokensDomain.SecretToken) error

	// GetByID returns ErrTokenNotFound when no token has the id.
	GetByID(ctx context.Context, tokenID uuid.UUID) (*tokensDomain.SecretToken, error)

	// ListByLookupPrefix returns every token sharing the lookup prefix,
	// including revoked and expired ones.
	ListByLookupPrefix(ctx context.Context, lookupPrefix string) ([]*tokensDomain.SecretToken, error)

	// ListLiveByLookupPrefix returns only the unrevoked tokens sharing the
	// lookup prefix that are still unexpired at now.
	ListLiveByLookupPrefix(
		ctx context.Context,
		lookupPrefix string,
		now time.Time,
	) ([]*tokensDomain.SecretToken, error)

	// ListByOrganization returns token metadata, newest first.
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*tokensDomain.SecretToken, error)

	// IncrementUsage atomically bumps usage_count and last_used. It only applies
	// to a token that is unrevoked, unexpired at usedAt and below its usage cap,
	// and reports whether the increment happened.
	IncrementUsage(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) (bool, error)

	// Revoke marks an unrevoked token revoked. Already revoked tokens keep their
	// original revocation details.
	Revoke(ctx context.Context, tokenID uuid.UUID, revokedBy string, revokedAt time.Time) error

	// DeleteExpired removes tokens that expired before olderThan.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)

	// CountExpired counts what DeleteExpired would remove.
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// TokenUseCase defines the business logic for service access tokens.
type TokenUseCase interface {
	// Generate issues a token. The plaintext in the output is never stored and
	// cannot be recovered.
	Generate(
		ctx context.Context,
		input *tokensDomain.GenerateTokenInput,
		actorID string,
		reqCtx auditDomain.RequestContext,
	) (*tokensDomain.GenerateTokenOutput, error)

	// Validate authenticates a presented token and records one use. Every
	// rejection surfaces as ErrInvalidAccessToken; the reason is only audited.
	Validate(ctx context.Context, plainToken string, reqCtx auditDomain.RequestContext) (*tokensDomain.SecretToken, error)

	// Revoke permanently disables a token. Revoking twice succeeds.
	Revoke(ctx context.Context, tokenID uuid.UUID, revokedBy string, reqCtx auditDomain.RequestContext) (bool, error)

	List(ctx context.Context, organizationID uuid.UUID) ([]*tokensDomain.SecretToken, error)

	// CleanupExpired deletes tokens that expired more than days ago. With dryRun
	// it only counts them.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
