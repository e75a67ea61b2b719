package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	auditUsecase "github.com/allisson/orgvault/internal/audit/usecase"
	apperrors "github.com/allisson/orgvault/internal/errors"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
	tokensService "github.com/allisson/orgvault/internal/tokens/service"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// anonymousActor attributes validation attempts that matched no token.
const anonymousActor = "anonymous"

// tokenUseCase implements the TokenUseCase interface.
type tokenUseCase struct {
	tokenRepo    TokenRepository
	tokenService tokensService.TokenService
	auditTrail   auditUsecase.AuditTrail
	logger       *slog.Logger
	now          func() time.Time
}

func (t *tokenUseCase) Generate(
	ctx context.Context,
	input *tokensDomain.GenerateTokenInput,
	actorID string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.GenerateTokenOutput, error) {
	entry := auditDomain.NewSecretAccess(
		nil, actorID, auditDomain.AccessTypeWrite, auditDomain.AccessMethodTokenIssue, reqCtx,
	)
	if input != nil {
		entry.WithMetadata("service_id", input.ServiceID).
			WithMetadata("scoped_secrets", input.ScopedSecrets)
	}

	output, err := t.generate(ctx, input, actorID)
	if err != nil {
		t.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	entry.WithMetadata("token_id", output.Token.ID.String())
	t.auditTrail.LogAccess(ctx, entry.Succeeded())
	return output, nil
}

func (t *tokenUseCase) generate(
	ctx context.Context,
	input *tokensDomain.GenerateTokenInput,
	actorID string,
) (*tokensDomain.GenerateTokenOutput, error) {
	if err := validateGenerateInput(input); err != nil {
		return nil, err
	}

	plainToken, tokenHash, lookupPrefix, err := t.tokenService.Generate()
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	expiryHours := tokensDomain.ClampExpiryHours(input.ExpiryHours)

	token := &tokensDomain.SecretToken{
		ID:             uuid.Must(uuid.NewV7()),
		OrganizationID: input.OrganizationID,
		ServiceID:      input.ServiceID,
		TokenHash:      tokenHash,
		LookupPrefix:   lookupPrefix,
		ScopedSecrets:  input.ScopedSecrets,
		ExpiresAt:      now.Add(time.Duration(expiryHours) * time.Hour),
		MaxUsages:      input.MaxUsages,
		IPRestrictions: input.IPRestrictions,
		Permissions:    []string{tokensDomain.PermissionRead},
		CreatedBy:      actorID,
		CreatedAt:      now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	t.logger.Info("access token issued",
		slog.String("token_id", token.ID.String()),
		slog.String("organization_id", token.OrganizationID.String()),
		slog.String("service_id", token.ServiceID),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return &tokensDomain.GenerateTokenOutput{
		PlainToken: plainToken,
		Token:      token,
	}, nil
}

// Validate writes one audit entry per attempt carrying the real outcome, while
// the caller only ever sees ErrInvalidAccessToken.
func (t *tokenUseCase) Validate(
	ctx context.Context,
	plainToken string,
	reqCtx auditDomain.RequestContext,
) (*tokensDomain.SecretToken, error) {
	entry := auditDomain.NewSecretAccess(
		nil, anonymousActor, auditDomain.AccessTypeRead, auditDomain.AccessMethodTokenValidate, reqCtx,
	)

	token, err := t.validate(ctx, plainToken, reqCtx.IPAddress)
	if err != nil {
		var rejected *tokensDomain.TokenRejectedError
		if apperrors.As(err, &rejected) {
			entry.WithMetadata("reason", string(rejected.Reason))
			if rejected.TokenID != "" {
				entry.UserID = "token:" + rejected.TokenID
				entry.WithMetadata("token_id", rejected.TokenID)
			}
			t.logger.Warn("access token rejected",
				slog.String("reason", string(rejected.Reason)),
				slog.String("token_id", rejected.TokenID),
				slog.String("ip_address", reqCtx.IPAddress),
			)
			t.auditTrail.LogAccess(ctx, entry.Failed(string(rejected.Reason)))
			return nil, err
		}
		t.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return nil, err
	}

	entry.UserID = token.ActorID()
	entry.WithMetadata("token_id", token.ID.String()).
		WithMetadata("service_id", token.ServiceID)
	t.auditTrail.LogAccess(ctx, entry.Succeeded())
	return token, nil
}

func (t *tokenUseCase) validate(ctx context.Context, plainToken, ipAddress string) (*tokensDomain.SecretToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookupPrefix, ok := t.tokenService.LookupPrefix(plainToken)
	if !ok {
		return nil, tokensDomain.Reject(tokensDomain.ReasonMalformed, "")
	}

	now := t.now().UTC()
	candidates, err := t.tokenRepo.ListLiveByLookupPrefix(ctx, lookupPrefix, now)
	if err != nil {
		return nil, err
	}

	token := t.match(plainToken, candidates)
	if token == nil {
		return nil, t.classifyDead(ctx, plainToken, lookupPrefix, now)
	}

	if reason, rejected := rejectionReason(token, now); rejected {
		return nil, tokensDomain.Reject(reason, token.ID.String())
	}
	if !token.AllowsIP(ipAddress) {
		return nil, tokensDomain.Reject(tokensDomain.ReasonIPDenied, token.ID.String())
	}

	incremented, err := t.tokenRepo.IncrementUsage(ctx, token.ID, now)
	if err != nil {
		return nil, err
	}
	if !incremented {
		// Lost a race against another use or a revocation; reclassify from the
		// stored state.
		reason := tokensDomain.ReasonUsageExceeded
		if current, err := t.tokenRepo.GetByID(ctx, token.ID); err == nil {
			if r, rejected := rejectionReason(current, now); rejected {
				reason = r
			}
		}
		return nil, tokensDomain.Reject(reason, token.ID.String())
	}

	token.UsageCount++
	token.LastUsed = &now
	return token, nil
}

func (t *tokenUseCase) match(plainToken string, candidates []*tokensDomain.SecretToken) *tokensDomain.SecretToken {
	for _, candidate := range candidates {
		if t.tokenService.Verify(plainToken, candidate.TokenHash) {
			return candidate
		}
	}
	return nil
}

// classifyDead attributes an unmatched token to a revoked or expired row so
// the audit trail records why it was refused. Only dead rows are hashed here;
// the live ones were already compared.
func (t *tokenUseCase) classifyDead(ctx context.Context, plainToken, lookupPrefix string, now time.Time) error {
	all, err := t.tokenRepo.ListByLookupPrefix(ctx, lookupPrefix)
	if err != nil {
		return err
	}

	dead := make([]*tokensDomain.SecretToken, 0, len(all))
	for _, candidate := range all {
		if candidate.IsRevoked || candidate.IsExpired(now) {
			dead = append(dead, candidate)
		}
	}
	if token := t.match(plainToken, dead); token != nil {
		reason, _ := rejectionReason(token, now)
		return tokensDomain.Reject(reason, token.ID.String())
	}
	return tokensDomain.Reject(tokensDomain.ReasonNotFound, "")
}

func rejectionReason(token *tokensDomain.SecretToken, now time.Time) (tokensDomain.RejectionReason, bool) {
	switch {
	case token.IsRevoked:
		return tokensDomain.ReasonRevoked, true
	case token.IsExpired(now):
		return tokensDomain.ReasonExpired, true
	case token.UsageExhausted():
		return tokensDomain.ReasonUsageExceeded, true
	default:
		return "", false
	}
}

func (t *tokenUseCase) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	reqCtx auditDomain.RequestContext,
) (bool, error) {
	entry := auditDomain.NewSecretAccess(
		nil, revokedBy, auditDomain.AccessTypeWrite, auditDomain.AccessMethodTokenRevoke, reqCtx,
	).WithMetadata("token_id", tokenID.String())

	if err := t.revoke(ctx, tokenID, revokedBy); err != nil {
		t.auditTrail.LogAccess(ctx, entry.Failed(err.Error()))
		return false, err
	}

	t.auditTrail.LogAccess(ctx, entry.Succeeded())
	return true, nil
}

func (t *tokenUseCase) revoke(ctx context.Context, tokenID uuid.UUID, revokedBy string) error {
	token, err := t.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if token.IsRevoked {
		return nil
	}

	if err := t.tokenRepo.Revoke(ctx, tokenID, revokedBy, t.now().UTC()); err != nil {
		return err
	}

	t.logger.Info("access token revoked",
		slog.String("token_id", tokenID.String()),
		slog.String("revoked_by", revokedBy),
	)
	return nil
}

func (t *tokenUseCase) List(ctx context.Context, organizationID uuid.UUID) ([]*tokensDomain.SecretToken, error) {
	return t.tokenRepo.ListByOrganization(ctx, organizationID)
}

func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be non-negative")
	}

	cutoff := t.now().UTC().AddDate(0, 0, -days)

	if dryRun {
		return t.tokenRepo.CountExpired(ctx, cutoff)
	}
	return t.tokenRepo.DeleteExpired(ctx, cutoff)
}

func validateGenerateInput(input *tokensDomain.GenerateTokenInput) error {
	if input == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "input is required")
	}

	err := validation.ValidateStruct(input,
		validation.Field(&input.OrganizationID, customValidation.NotNilUUID),
		validation.Field(&input.ServiceID, validation.Required, validation.Length(1, 255), customValidation.NotBlank),
		validation.Field(&input.ScopedSecrets,
			validation.Required,
			validation.Length(1, 100),
			validation.Each(validation.Required, customValidation.SecretKey),
		),
		validation.Field(&input.MaxUsages, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&input.IPRestrictions, validation.Each(validation.Required, customValidation.IPOrCIDR)),
	)
	return customValidation.WrapValidationError(err)
}

// NewTokenUseCase creates a TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	tokenRepo TokenRepository,
	tokenService tokensService.TokenService,
	auditTrail auditUsecase.AuditTrail,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		tokenRepo:    tokenRepo,
		tokenService: tokenService,
		auditTrail:   auditTrail,
		logger:       logger,
		now:          time.Now,
	}
}
